// Package receipt archives raw card processor receipts in DynamoDB, keyed by payment id.
package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/money"
)

type putter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type item struct {
	PaymentID     string         `dynamodbav:"payment_id"`
	Recorded      bool           `dynamodbav:"recorded"`
	InvoiceID     string         `dynamodbav:"invoice_id"`
	InvoiceNumber string         `dynamodbav:"invoice_number"`
	Processor     string         `dynamodbav:"processor"`
	ProviderID    string         `dynamodbav:"provider_id"`
	Status        string         `dynamodbav:"status"`
	Amount        string         `dynamodbav:"amount"`
	AmountCents   int64          `dynamodbav:"amount_cents"`
	PaidAt        string         `dynamodbav:"paid_at"`
	Payload       map[string]any `dynamodbav:"payload,omitempty"`
	PayloadRaw    string         `dynamodbav:"payload_raw,omitempty"`
}

type Archive struct {
	db    putter
	table string
}

func New(db putter, table string) *Archive {
	return &Archive{db: db, table: table}
}

// NewClient builds a DynamoDB client. With endpoint set it talks to a local DynamoDB using
// static credentials.
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if endpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func toItem(r invoice.Receipt) item {
	it := item{
		PaymentID:     r.PaymentID.String(),
		Recorded:      r.Recorded,
		InvoiceID:     r.InvoiceID.String(),
		InvoiceNumber: r.InvoiceNumber,
		Processor:     r.Processor,
		ProviderID:    r.ProviderID,
		Status:        r.Status,
		Amount:        money.Decimal(r.AmountCents),
		AmountCents:   r.AmountCents,
		PaidAt:        r.PaidAt.UTC().Format(time.RFC3339Nano),
	}

	if len(r.Raw) == 0 {
		return it
	}

	var payload map[string]any
	if err := json.Unmarshal(r.Raw, &payload); err != nil {
		it.PayloadRaw = string(r.Raw)
	} else {
		it.Payload = payload
	}

	return it
}

// Archive writes r once; a second write for the same payment is rejected by the table.
func (a *Archive) Archive(ctx context.Context, r invoice.Receipt) error {
	av, err := attributevalue.MarshalMap(toItem(r))
	if err != nil {
		return fmt.Errorf("encoding receipt: %w", err)
	}

	_, err = a.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(a.table),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "payment_id"},
	})
	if err != nil {
		return fmt.Errorf("archiving receipt for %s: %w", r.InvoiceNumber, err)
	}

	return nil
}
