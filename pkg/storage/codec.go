package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

const CurrentSchemaVersion = 1

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeExperiment(record ExperimentRecord) ([]byte, error) {
	record.SchemaVersion = CurrentSchemaVersion
	return json.Marshal(record)
}

func DecodeExperiment(data []byte) (ExperimentRecord, error) {
	var record ExperimentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return ExperimentRecord{}, err
	}
	if record.SchemaVersion != CurrentSchemaVersion {
		return ExperimentRecord{}, fmt.Errorf("%w: got schema %d, want %d",
			ErrVersionMismatch, record.SchemaVersion, CurrentSchemaVersion)
	}
	return record, nil
}
