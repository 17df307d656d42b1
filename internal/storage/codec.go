package storage

import (
	"encoding/json"
	"errors"

	"spinsearch/internal/search"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

func currentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// configurationEnvelope versions a stored configuration without forcing
// version fields into the search package's value type.
type configurationEnvelope struct {
	VersionedRecord
	RunID         string               `json:"run_id"`
	Configuration search.Configuration `json:"configuration"`
}

func EncodeConfiguration(runID string, c search.Configuration) ([]byte, error) {
	return json.Marshal(configurationEnvelope{
		VersionedRecord: currentVersion(),
		RunID:           runID,
		Configuration:   c,
	})
}

func DecodeConfiguration(data []byte) (search.Configuration, error) {
	var envelope configurationEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return search.Configuration{}, err
	}
	if err := checkVersion(envelope.VersionedRecord); err != nil {
		return search.Configuration{}, err
	}
	return envelope.Configuration, nil
}

func EncodeRun(run RunRecord) ([]byte, error) {
	run.VersionedRecord = currentVersion()
	return json.Marshal(run)
}

func DecodeRun(data []byte) (RunRecord, error) {
	var run RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return RunRecord{}, err
	}
	return run, nil
}

func EncodeBestHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeBestHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
