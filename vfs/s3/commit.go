package s3

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrAlreadyCommitted is returned when a fragment commit marker already
// exists, which indicates a duplicate fragment name across writers.
var ErrAlreadyCommitted = errors.New("fragment already committed")

// DDBClient is the subset of the DynamoDB API the commit table uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// CommitTable records fragment commit markers in DynamoDB, providing the
// atomic visibility decision S3 lacks. A fragment under a shared array URI
// counts as committed only once its marker item exists.
//
// Table schema:
//   - Partition key: array_uri (string)
//   - Sort key: fragment (string)
//
// Create with:
//
//	aws dynamodb create-table \
//	  --table-name gridgo-commits \
//	  --attribute-definitions AttributeName=array_uri,AttributeType=S AttributeName=fragment,AttributeType=S \
//	  --key-schema AttributeName=array_uri,KeyType=HASH AttributeName=fragment,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type CommitTable struct {
	client DDBClient
	table  string
}

// NewCommitTable creates a commit table client.
func NewCommitTable(client DDBClient, table string) *CommitTable {
	return &CommitTable{client: client, table: table}
}

// Commit marks a fragment as committed. The conditional write fails with
// ErrAlreadyCommitted if a marker for the same fragment already exists.
func (t *CommitTable) Commit(ctx context.Context, arrayURI, frag string) error {
	_, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.table),
		Item: map[string]types.AttributeValue{
			"array_uri": &types.AttributeValueMemberS{Value: arrayURI},
			"fragment":  &types.AttributeValueMemberS{Value: frag},
		},
		ConditionExpression: aws.String("attribute_not_exists(fragment)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return ErrAlreadyCommitted
		}
		return err
	}
	return nil
}

// Committed reports whether a fragment has a commit marker.
func (t *CommitTable) Committed(ctx context.Context, arrayURI, frag string) (bool, error) {
	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.table),
		Key: map[string]types.AttributeValue{
			"array_uri": &types.AttributeValueMemberS{Value: arrayURI},
			"fragment":  &types.AttributeValueMemberS{Value: frag},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	return len(out.Item) > 0, nil
}

// List returns the committed fragment names under an array URI, in sort-key
// order.
func (t *CommitTable) List(ctx context.Context, arrayURI string) ([]string, error) {
	var frags []string
	var startKey map[string]types.AttributeValue
	for {
		out, err := t.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(t.table),
			KeyConditionExpression: aws.String("array_uri = :uri"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uri": &types.AttributeValueMemberS{Value: arrayURI},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			if v, ok := item["fragment"].(*types.AttributeValueMemberS); ok {
				frags = append(frags, v.Value)
			}
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return frags, nil
}

// Remove deletes a commit marker, used when garbage-collecting fragments.
func (t *CommitTable) Remove(ctx context.Context, arrayURI, frag string) error {
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.table),
		Key: map[string]types.AttributeValue{
			"array_uri": &types.AttributeValueMemberS{Value: arrayURI},
			"fragment":  &types.AttributeValueMemberS{Value: frag},
		},
	})
	return err
}
