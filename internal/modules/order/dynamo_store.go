// README: Order store backed by DynamoDB (conditional puts on status_version).
package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"carebridge/internal/types"
)

// DynamoAPI is the subset of *dynamodb.Client the store calls.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type orderItem struct {
	ID                 string   `dynamodbav:"id"`
	PatientID          string   `dynamodbav:"patient_id"`
	PatientName        string   `dynamodbav:"patient_name"`
	PatientContact     string   `dynamodbav:"patient_contact"`
	LocationLat        *float64 `dynamodbav:"location_lat,omitempty"`
	LocationLng        *float64 `dynamodbav:"location_lng,omitempty"`
	Address            string   `dynamodbav:"address,omitempty"`
	ServiceType        string   `dynamodbav:"service_type"`
	ServiceCategory    string   `dynamodbav:"service_category"`
	Category           string   `dynamodbav:"category"`
	EquipmentName      string   `dynamodbav:"equipment_name,omitempty"`
	EquipmentModel     string   `dynamodbav:"equipment_model,omitempty"`
	IssueDescription   string   `dynamodbav:"issue_description,omitempty"`
	Urgency            string   `dynamodbav:"urgency,omitempty"`
	Status             string   `dynamodbav:"status"`
	StatusVersion      int      `dynamodbav:"status_version"`
	AssignedEngineerID string   `dynamodbav:"assigned_engineer_id,omitempty"`
	QuotedPrice        *int64   `dynamodbav:"quoted_price,omitempty"`
	QuotedCurrency     string   `dynamodbav:"quoted_currency,omitempty"`
	UserRating         *int     `dynamodbav:"user_rating,omitempty"`
	UserReview         string   `dynamodbav:"user_review,omitempty"`
	CreatedAt          string   `dynamodbav:"created_at"`
	UpdatedAt          string   `dynamodbav:"updated_at"`
	RespondedAt        string   `dynamodbav:"responded_at,omitempty"`
	CompletedAt        string   `dynamodbav:"completed_at,omitempty"`
}

// DynamoStore persists orders in a single table keyed by id (string).
type DynamoStore struct {
	ddb       DynamoAPI
	tableName string
}

func NewDynamoStore(ddb DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{ddb: ddb, tableName: tableName}
}

func (s *DynamoStore) Create(ctx context.Context, o *Order) error {
	av, err := attributevalue.MarshalMap(toOrderItem(o))
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", o.ID, err)
	}
	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if isConditionFailed(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("put order %s: %w", o.ID, err)
	}
	return nil
}

func (s *DynamoStore) Get(ctx context.Context, id types.ID) (*Order, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]ddbtypes.AttributeValue{
			"id": &ddbtypes.AttributeValueMemberS{Value: string(id)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var it orderItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal order %s: %w", id, err)
	}
	return fromOrderItem(it), nil
}

func (s *DynamoStore) ListVisible(ctx context.Context, partnerID types.ID, bucket Category) ([]*Order, error) {
	p := dynamodb.NewScanPaginator(s.ddb, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("(#status = :pending AND #category = :category) OR #assigned = :partner"),
		ExpressionAttributeNames: map[string]string{
			"#status":   "status",
			"#category": "category",
			"#assigned": "assigned_engineer_id",
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pending":  &ddbtypes.AttributeValueMemberS{Value: string(StatusPending)},
			":category": &ddbtypes.AttributeValueMemberS{Value: string(bucket)},
			":partner":  &ddbtypes.AttributeValueMemberS{Value: string(partnerID)},
		},
	})

	var out []*Order
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		var items []orderItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		for _, it := range items {
			out = append(out, fromOrderItem(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *DynamoStore) Swap(ctx context.Context, from Status, version int, next *Order) (bool, error) {
	av, err := attributevalue.MarshalMap(toOrderItem(next))
	if err != nil {
		return false, fmt.Errorf("marshal order %s: %w", next.ID, err)
	}
	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("#status = :from AND #version = :version"),
		ExpressionAttributeNames: map[string]string{
			"#status":  "status",
			"#version": "status_version",
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":from":    &ddbtypes.AttributeValueMemberS{Value: string(from)},
			":version": &ddbtypes.AttributeValueMemberN{Value: fmt.Sprint(version)},
		},
	})
	if isConditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("swap order %s: %w", next.ID, err)
	}
	return true, nil
}

func isConditionFailed(err error) bool {
	var cfe *ddbtypes.ConditionalCheckFailedException
	return errors.As(err, &cfe)
}

func toOrderItem(o *Order) orderItem {
	it := orderItem{
		ID:               string(o.ID),
		PatientID:        string(o.PatientID),
		PatientName:      o.PatientName,
		PatientContact:   o.PatientContact,
		Address:          o.Address,
		ServiceType:      o.ServiceType,
		ServiceCategory:  o.ServiceCategory,
		Category:         string(o.Category),
		EquipmentName:    o.EquipmentName,
		EquipmentModel:   o.EquipmentModel,
		IssueDescription: o.IssueDescription,
		Urgency:          o.Urgency,
		Status:           string(o.Status),
		StatusVersion:    o.StatusVersion,
		UserRating:       o.UserRating,
		UserReview:       o.UserReview,
		CreatedAt:        formatTime(o.CreatedAt),
		UpdatedAt:        formatTime(o.UpdatedAt),
	}
	if o.Location != nil {
		lat, lng := o.Location.Lat, o.Location.Lng
		it.LocationLat, it.LocationLng = &lat, &lng
	}
	if o.AssignedEngineerID != nil {
		it.AssignedEngineerID = string(*o.AssignedEngineerID)
	}
	if o.QuotedPrice != nil {
		amount := o.QuotedPrice.Amount
		it.QuotedPrice = &amount
		it.QuotedCurrency = o.QuotedPrice.Currency
	}
	if o.RespondedAt != nil {
		it.RespondedAt = formatTime(*o.RespondedAt)
	}
	if o.CompletedAt != nil {
		it.CompletedAt = formatTime(*o.CompletedAt)
	}
	return it
}

func fromOrderItem(it orderItem) *Order {
	o := &Order{
		ID:               types.ID(it.ID),
		PatientID:        types.ID(it.PatientID),
		PatientName:      it.PatientName,
		PatientContact:   it.PatientContact,
		Address:          it.Address,
		ServiceType:      it.ServiceType,
		ServiceCategory:  it.ServiceCategory,
		Category:         Category(it.Category),
		EquipmentName:    it.EquipmentName,
		EquipmentModel:   it.EquipmentModel,
		IssueDescription: it.IssueDescription,
		Urgency:          it.Urgency,
		Status:           Status(it.Status),
		StatusVersion:    it.StatusVersion,
		UserRating:       it.UserRating,
		UserReview:       it.UserReview,
		CreatedAt:        parseTime(it.CreatedAt),
		UpdatedAt:        parseTime(it.UpdatedAt),
	}
	if it.LocationLat != nil && it.LocationLng != nil {
		o.Location = &types.Point{Lat: *it.LocationLat, Lng: *it.LocationLng}
	}
	if it.AssignedEngineerID != "" {
		id := types.ID(it.AssignedEngineerID)
		o.AssignedEngineerID = &id
	}
	if it.QuotedPrice != nil {
		currency := it.QuotedCurrency
		if currency == "" {
			currency = types.DefaultCurrency
		}
		o.QuotedPrice = &types.Money{Amount: *it.QuotedPrice, Currency: currency}
	}
	if it.RespondedAt != "" {
		t := parseTime(it.RespondedAt)
		o.RespondedAt = &t
	}
	if it.CompletedAt != "" {
		t := parseTime(it.CompletedAt)
		o.CompletedAt = &t
	}
	return o
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
