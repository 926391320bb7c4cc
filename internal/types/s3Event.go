package types

import (
	"errors"
	"fmt"
)

// ErrEventShape marks a trigger payload that does not carry a bucket and key.
var ErrEventShape = errors.New("malformed s3 event")

// S3Event mirrors the S3 bucket notification payload. Only the fields the
// worker reads are declared.
type S3Event struct {
	Records []S3EventRecord `json:"Records"`
}

type S3EventRecord struct {
	EventName string `json:"eventName"`
	AwsRegion string `json:"awsRegion"`
	S3        S3     `json:"s3"`
}

type S3 struct {
	Bucket Bucket `json:"bucket"`
	Object Object `json:"object"`
}

type Bucket struct {
	Name string `json:"name"`
}

type Object struct {
	Key       string `json:"key"`
	Size      int64  `json:"size"`
	ETag      string `json:"eTag"`
	Sequencer string `json:"sequencer"`
}

// Source returns the bucket and raw (still URL-encoded) key of the first record.
func (e S3Event) Source() (S3EventRecord, error) {
	if len(e.Records) == 0 {
		return S3EventRecord{}, fmt.Errorf("%w: no records", ErrEventShape)
	}
	rec := e.Records[0]
	if rec.S3.Bucket.Name == "" {
		return S3EventRecord{}, fmt.Errorf("%w: missing s3.bucket.name", ErrEventShape)
	}
	if rec.S3.Object.Key == "" {
		return S3EventRecord{}, fmt.Errorf("%w: missing s3.object.key", ErrEventShape)
	}
	return rec, nil
}
