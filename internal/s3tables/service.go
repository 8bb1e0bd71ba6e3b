// Package s3tables implements types.TableService on the AWS S3 Tables API.
package s3tables

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	s3t "github.com/aws/aws-sdk-go-v2/service/s3tables"
	s3ttypes "github.com/aws/aws-sdk-go-v2/service/s3tables/types"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// API is the subset of the S3 Tables client the service calls.
type API interface {
	CreateNamespace(ctx context.Context, params *s3t.CreateNamespaceInput, optFns ...func(*s3t.Options)) (*s3t.CreateNamespaceOutput, error)
	CreateTable(ctx context.Context, params *s3t.CreateTableInput, optFns ...func(*s3t.Options)) (*s3t.CreateTableOutput, error)
	DeleteTable(ctx context.Context, params *s3t.DeleteTableInput, optFns ...func(*s3t.Options)) (*s3t.DeleteTableOutput, error)
}

// Service sends create and delete requests to S3 Tables.
type Service struct {
	client           API
	createNamespaces bool
}

// New loads AWS configuration from the environment (credentials chain,
// profile, region) and returns a Service. The SDK retryer is disabled; the
// apply driver owns retries so that every attempt is logged and counted.
func New(ctx context.Context, cfg types.Config) (*Service, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3t.NewFromConfig(awsCfg, func(o *s3t.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.CreateNamespaces), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client API, createNamespaces bool) *Service {
	return &Service{client: client, createNamespaces: createNamespaces}
}

// CreateTable creates the table, first creating its namespace when the
// service is configured to. An existing table yields an error wrapping
// types.ErrAlreadyExists.
func (s *Service) CreateTable(ctx context.Context, req types.CreateTableRequest) error {
	id := req.Identity()
	if s.createNamespaces {
		if err := s.ensureNamespace(ctx, id); err != nil {
			return err
		}
	}

	input := &s3t.CreateTableInput{
		TableBucketARN: aws.String(req.TableBucketARN),
		Namespace:      aws.String(req.Namespace),
		Name:           aws.String(req.Name),
		Format:         s3ttypes.OpenTableFormat(req.Format),
	}
	if req.Metadata != nil {
		input.Metadata = &s3ttypes.TableMetadataMemberIceberg{
			Value: s3ttypes.IcebergMetadata{
				Schema: &s3ttypes.IcebergSchema{Fields: schemaFields(req.Metadata.Iceberg.Schema.Fields)},
			},
		}
	}

	if _, err := s.client.CreateTable(ctx, input); err != nil {
		return classify(opCreateTable, id, err)
	}
	return nil
}

// DeleteTable deletes the table. A missing table yields an error wrapping
// types.ErrNotFound.
func (s *Service) DeleteTable(ctx context.Context, req types.DeleteTableRequest) error {
	_, err := s.client.DeleteTable(ctx, &s3t.DeleteTableInput{
		TableBucketARN: aws.String(req.TableBucketARN),
		Namespace:      aws.String(req.Namespace),
		Name:           aws.String(req.Name),
	})
	if err != nil {
		return classify(opDeleteTable, req.Identity(), err)
	}
	return nil
}

func (s *Service) ensureNamespace(ctx context.Context, id types.Identity) error {
	_, err := s.client.CreateNamespace(ctx, &s3t.CreateNamespaceInput{
		TableBucketARN: aws.String(id.BucketARN),
		Namespace:      []string{id.Namespace},
	})
	if err == nil {
		return nil
	}
	err = classify(opCreateNamespace, id, err)
	if isConflict(err) {
		return nil
	}
	return err
}

func schemaFields(fields []types.SchemaField) []s3ttypes.SchemaField {
	out := make([]s3ttypes.SchemaField, len(fields))
	for i, f := range fields {
		out[i] = s3ttypes.SchemaField{
			Name:     aws.String(f.Name),
			Type:     aws.String(f.Type),
			Required: f.Required,
		}
	}
	return out
}
