package tensor

import (
	"fmt"

	"github.com/kilavvy/composer/pkg/errors"
)

// ShardMeta describes where a local shard sits inside the global tensor.
type ShardMeta struct {
	// GlobalShape is the full logical tensor shape.
	GlobalShape []int
	// Offsets is the position of the local shard's first element along
	// each dimension of the global tensor.
	Offsets []int
	// Rank is the process owning this shard.
	Rank int
	// WorldSize is the number of participating processes.
	WorldSize int
}

// Sharded is a tensor logically split across processes. Each process
// holds only its local shard; no cross-rank communication happens here,
// so anything consuming a Sharded sees this rank's data only.
type Sharded struct {
	local *Dense
	meta  ShardMeta
}

// NewSharded wraps a local shard with its placement metadata.
func NewSharded(local *Dense, meta ShardMeta) (*Sharded, error) {
	if local == nil {
		return nil, errors.NewValueError("tensor.NewSharded", "nil local shard")
	}
	if meta.WorldSize <= 0 {
		return nil, errors.NewValueError("tensor.NewSharded", fmt.Sprintf("invalid world size %d", meta.WorldSize))
	}
	if meta.Rank < 0 || meta.Rank >= meta.WorldSize {
		return nil, errors.NewValueError("tensor.NewSharded", fmt.Sprintf("rank %d outside world of %d", meta.Rank, meta.WorldSize))
	}
	if len(meta.Offsets) != len(meta.GlobalShape) {
		return nil, errors.NewDimensionError("tensor.NewSharded", len(meta.GlobalShape), len(meta.Offsets), 0)
	}
	return &Sharded{local: local, meta: meta}, nil
}

// LocalShard returns the locally-owned portion of the tensor.
func (s *Sharded) LocalShard() *Dense { return s.local }

// Meta returns the shard placement metadata.
func (s *Sharded) Meta() ShardMeta { return s.meta }

// String returns a short description.
func (s *Sharded) String() string {
	return fmt.Sprintf("sharded(global=%v, rank=%d/%d, local=%s)",
		s.meta.GlobalShape, s.meta.Rank, s.meta.WorldSize, s.local)
}

type placementKind int

const (
	placementReplicate placementKind = iota
	placementShard
)

// Placement describes how a DTensor is laid out across the mesh.
type Placement struct {
	kind placementKind
	dim  int
}

// Replicate is the placement of a tensor held in full on every process.
func Replicate() Placement {
	return Placement{kind: placementReplicate}
}

// ShardAlong is the placement of a tensor partitioned along dim.
func ShardAlong(dim int) Placement {
	return Placement{kind: placementShard, dim: dim}
}

// IsReplicated reports whether the placement is full replication.
func (p Placement) IsReplicated() bool { return p.kind == placementReplicate }

// Dim returns the partitioned dimension, valid when not replicated.
func (p Placement) Dim() int { return p.dim }

// String returns "replicate" or "shard(dim=N)".
func (p Placement) String() string {
	if p.kind == placementReplicate {
		return "replicate"
	}
	return fmt.Sprintf("shard(dim=%d)", p.dim)
}

// DTensor is a tensor distributed over a device mesh with an explicit
// placement. Like Sharded it holds only the local view.
type DTensor struct {
	local     *Dense
	placement Placement
	rank      int
	worldSize int
}

// NewDTensor wraps a local replica or partition with its placement.
func NewDTensor(local *Dense, placement Placement, rank, worldSize int) (*DTensor, error) {
	if local == nil {
		return nil, errors.NewValueError("tensor.NewDTensor", "nil local tensor")
	}
	if worldSize <= 0 {
		return nil, errors.NewValueError("tensor.NewDTensor", fmt.Sprintf("invalid world size %d", worldSize))
	}
	if rank < 0 || rank >= worldSize {
		return nil, errors.NewValueError("tensor.NewDTensor", fmt.Sprintf("rank %d outside world of %d", rank, worldSize))
	}
	return &DTensor{local: local, placement: placement, rank: rank, worldSize: worldSize}, nil
}

// ToLocal returns the locally-held view of the distributed tensor.
func (d *DTensor) ToLocal() *Dense { return d.local }

// Placement returns how the tensor is laid out across the mesh.
func (d *DTensor) Placement() Placement { return d.placement }

// Rank returns the local process rank.
func (d *DTensor) Rank() int { return d.rank }

// WorldSize returns the mesh size.
func (d *DTensor) WorldSize() int { return d.worldSize }

// String returns a short description.
func (d *DTensor) String() string {
	return fmt.Sprintf("dtensor(%s, rank=%d/%d, local=%s)", d.placement, d.rank, d.worldSize, d.local)
}
