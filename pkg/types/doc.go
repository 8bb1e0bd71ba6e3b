// Package types defines the table definition model, change records, API
// request shapes, the TableService interface, and the standard errors
// shared by the tablectl loader, classifier, translator, and apply driver.
package types
