package state

import (
	"encoding/gob"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/kilavvy/composer/core/traintime"
	"github.com/kilavvy/composer/pkg/errors"
	"github.com/kilavvy/composer/pkg/log"
	"github.com/kilavvy/composer/tensor"
)

// CheckpointMeta describes a saved checkpoint.
type CheckpointMeta struct {
	Version   string
	Framework string
	CreatedAt time.Time
	Tags      []string
}

// checkpointFile is the on-disk gob layout.
type checkpointFile struct {
	Meta CheckpointMeta
	Dict map[string]any
}

func init() {
	// Concrete types that may appear behind `any` in a state dict.
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(Tuple{})
	gob.Register(&tensor.Dense{})
	gob.Register(traintime.Time{})
	gob.Register(traintime.Unit(""))
	gob.Register(time.Duration(0))
}

// SaveCheckpoint writes a state dict and its metadata to path in gob
// format.
func SaveCheckpoint(path string, dict map[string]any, meta CheckpointMeta) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewCheckpointError("SaveCheckpoint", "create file", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(checkpointFile{Meta: meta, Dict: dict}); err != nil {
		return errors.NewCheckpointError("SaveCheckpoint", "encode", err)
	}

	log.GetLogger().Info("checkpoint saved",
		log.OperationKey, "save",
		log.CheckpointKey, path,
	)
	return nil
}

// LoadCheckpoint reads a state dict and its metadata from path. Gob
// panics on some malformed inputs, so decoding runs under Recover.
func LoadCheckpoint(path string) (dict map[string]any, meta CheckpointMeta, err error) {
	defer errors.Recover(&err, "LoadCheckpoint")

	file, err := os.Open(path)
	if err != nil {
		return nil, CheckpointMeta{}, errors.NewCheckpointError("LoadCheckpoint", "open file", err)
	}
	defer file.Close()

	var ckpt checkpointFile
	if err := gob.NewDecoder(file).Decode(&ckpt); err != nil {
		return nil, CheckpointMeta{}, errors.NewCheckpointError("LoadCheckpoint", "decode", err)
	}

	log.GetLogger().Info("checkpoint loaded",
		log.OperationKey, "load",
		log.CheckpointKey, path,
	)
	return ckpt.Dict, ckpt.Meta, nil
}

// ExportJSON writes a state dict as indented JSON. This is an export
// format: decoding JSON does not reconstruct tensor or time types, use
// gob checkpoints for round trips.
func ExportJSON(w io.Writer, dict map[string]any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dict); err != nil {
		return errors.NewCheckpointError("ExportJSON", "encode", err)
	}
	return nil
}
