package backend

import "strconv"

// NodeID and EdgeID are ergonomic wrappers over the raw int64 ids used
// throughout the store, grounded on original_source's NodeId/EdgeId
// newtypes. They carry no behaviour beyond display and conversion; every
// Backend method still takes and returns plain int64.
type NodeID int64

// EdgeID is the edge-side counterpart of NodeID.
type EdgeID int64

func (id NodeID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id NodeID) Int64() int64   { return int64(id) }

func (id EdgeID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id EdgeID) Int64() int64   { return int64(id) }
