package chathistory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

// ScanAPI is the slice of the DynamoDB client the scanner needs.
type ScanAPI interface {
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Scanner reads the chat history table.
type Scanner struct {
	client ScanAPI
	table  string
}

func NewScanner(client ScanAPI, table string) *Scanner {
	return &Scanner{client: client, table: table}
}

// NewScannerFromEnv builds a scanner on the default AWS credential chain.
func NewScannerFromEnv(ctx context.Context, region, table string) (*Scanner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewScanner(dynamodb.NewFromConfig(awsCfg), table), nil
}

// ScanComplete walks the whole table and returns every record that has a
// question, generated SQL, and insights. Pagination follows LastEvaluatedKey
// until the table is exhausted. Store errors abort the scan.
func (s *Scanner) ScanComplete(ctx context.Context) ([]Record, error) {
	var out []Record
	var startKey map[string]ddbtypes.AttributeValue
	pages := 0
	for {
		resp, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		pages++
		for _, item := range resp.Items {
			var rec Record
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				logrus.WithError(err).Warn("skipping undecodable chat history item")
				continue
			}
			if rec.Complete() {
				out = append(out, rec)
			}
		}
		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		startKey = resp.LastEvaluatedKey
	}
	logrus.WithFields(logrus.Fields{"pages": pages, "records": len(out)}).Debug("table scan finished")
	return out, nil
}
