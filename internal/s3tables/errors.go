package s3tables

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	s3ttypes "github.com/aws/aws-sdk-go-v2/service/s3tables/types"
	"github.com/aws/smithy-go"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// Operation names used in APIError.Op.
const (
	opCreateNamespace = "CreateNamespace"
	opCreateTable     = "CreateTable"
	opDeleteTable     = "DeleteTable"
)

// errConflict marks a ConflictException on operations other than
// CreateTable.
var errConflict = errors.New("resource already exists")

// classify turns an SDK error into a *types.APIError. Conflicts on create
// wrap types.ErrAlreadyExists and missing tables on delete wrap
// types.ErrNotFound. Throttling, server errors, and errors the SDK
// considers retryable are transient.
func classify(op string, id types.Identity, err error) error {
	apiErr := &types.APIError{Op: op, Table: id, Err: err}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		apiErr.Code = ae.ErrorCode()
	}

	var (
		conflict  *s3ttypes.ConflictException
		notFound  *s3ttypes.NotFoundException
		throttled *s3ttypes.TooManyRequestsException
		internal  *s3ttypes.InternalServerErrorException
	)
	switch {
	case errors.As(err, &conflict):
		if op == opCreateTable {
			apiErr.Err = fmt.Errorf("%w: %v", types.ErrAlreadyExists, err)
		} else {
			apiErr.Err = fmt.Errorf("%w: %v", errConflict, err)
		}
	case errors.As(err, &notFound):
		if op == opDeleteTable {
			apiErr.Err = fmt.Errorf("%w: %v", types.ErrNotFound, err)
		} else {
			apiErr.Err = fmt.Errorf("%w: %v", types.ErrNamespaceNotFound, err)
		}
	case errors.As(err, &throttled), errors.As(err, &internal):
		apiErr.Transient = true
	default:
		apiErr.Transient = retry.IsErrorRetryables(retry.DefaultRetryables).IsErrorRetryable(err) == aws.TrueTernary
	}
	return apiErr
}

func isConflict(err error) bool {
	return errors.Is(err, errConflict) || errors.Is(err, types.ErrAlreadyExists)
}
