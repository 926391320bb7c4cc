package utils

import "github.com/mahirjain10/image-resolution-worker/internal/types"

const pattern = "status"

func InitStatusData(runID, bucket, key, status string, written, failed []string, errorMsg string) *types.StatusData {
	return &types.StatusData{
		RunID:    runID,
		Bucket:   bucket,
		Key:      key,
		Status:   status,
		Written:  written,
		Failed:   failed,
		ErrorMsg: errorMsg,
	}
}

func InitStatusMessage(data *types.StatusData) *types.StatusMessage {
	return &types.StatusMessage{Pattern: pattern, Data: *data}
}
