package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fjod/restaurant/internal/domain"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoStore implements Backend with one table per family, hash key = family key.
type DynamoStore struct {
	client DynamoAPI
}

func NewDynamoStore(client DynamoAPI) *DynamoStore {
	return &DynamoStore{client: client}
}

func (d *DynamoStore) Put(ctx context.Context, fam Family, doc Document) error {
	item, err := attributevalue.MarshalMap(toDynamo(doc))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", fam.Name, err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(fam.Name),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#" + keyPlaceholder + ")"),
		ExpressionAttributeNames: map[string]string{"#" + keyPlaceholder: fam.Key},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s %v", ErrDuplicateKey, fam.Name, doc[fam.Key])
		}
		return unavailable("put", fam, err)
	}
	return nil
}

func (d *DynamoStore) Get(ctx context.Context, fam Family, key string) (Document, bool, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(fam.Name),
		Key:            dynamoKey(fam, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, unavailable("get", fam, err)
	}
	if out.Item == nil {
		return nil, false, nil
	}

	doc, err := decodeDynamoItem(out.Item)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", fam.Name, err)
	}
	return doc, true, nil
}

// Update applies one UpdateItem with a SET clause per field, conditioned on the record
// existing, and returns the item as written.
func (d *DynamoStore) Update(ctx context.Context, fam Family, key string, set Document) (Document, error) {
	expr, err := buildUpdate(fam, set)
	if err != nil {
		return nil, err
	}

	out, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(fam.Name),
		Key:                       dynamoKey(fam, key),
		UpdateExpression:          aws.String(expr.Update),
		ConditionExpression:       aws.String(expr.Condition),
		ExpressionAttributeNames:  expr.Names,
		ExpressionAttributeValues: expr.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, fam.Name, key)
		}
		return nil, unavailable("update", fam, err)
	}

	doc, err := decodeDynamoItem(out.Attributes)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fam.Name, err)
	}
	return doc, nil
}

func (d *DynamoStore) Delete(ctx context.Context, fam Family, key string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(fam.Name),
		Key:                      dynamoKey(fam, key),
		ConditionExpression:      aws.String("attribute_exists(#" + keyPlaceholder + ")"),
		ExpressionAttributeNames: map[string]string{"#" + keyPlaceholder: fam.Key},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s %s", domain.ErrNotFound, fam.Name, key)
		}
		return unavailable("delete", fam, err)
	}
	return nil
}

// Scan reads the whole table, following pagination internally.
func (d *DynamoStore) Scan(ctx context.Context, fam Family) ([]Document, error) {
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName:      aws.String(fam.Name),
		ConsistentRead: aws.Bool(true),
	})

	var docs []Document
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, unavailable("scan", fam, err)
		}
		for _, item := range page.Items {
			doc, err := decodeDynamoItem(item)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", fam.Name, err)
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// EnsureTables creates missing on-demand tables for the given families and waits until they
// are active. Meant for local development against dynamodb-local.
func (d *DynamoStore) EnsureTables(ctx context.Context, families ...Family) error {
	waiter := dynamodb.NewTableExistsWaiter(d.client)
	for _, fam := range families {
		_, err := d.client.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(fam.Name),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(fam.Key), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(fam.Key), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		})
		if err != nil {
			var inUse *types.ResourceInUseException
			if !errors.As(err, &inUse) {
				return fmt.Errorf("create table %s: %w", fam.Name, err)
			}
		}

		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(fam.Name)}, 2*time.Minute); err != nil {
			return fmt.Errorf("wait for table %s: %w", fam.Name, err)
		}
	}
	return nil
}

func dynamoKey(fam Family, key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		fam.Key: &types.AttributeValueMemberS{Value: key},
	}
}

func decodeDynamoItem(item map[string]types.AttributeValue) (Document, error) {
	var raw map[string]any
	err := attributevalue.UnmarshalMapWithOptions(item, &raw, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, err
	}
	v, err := fromDynamo(raw)
	if err != nil {
		return nil, err
	}
	return v.(Document), nil
}
