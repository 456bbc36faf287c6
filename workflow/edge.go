package workflow

// Edge is the closed sum of connection shapes between graph nodes.
type Edge interface{ isEdge() }

// Single connects one upstream node to one downstream node.
type Single struct {
	From string
	To   string
}

func (Single) isEdge() {}

// FanOut delivers every payload sent by From to all listed targets,
// splitting execution into parallel branches. Branch order is the
// declaration order of To.
type FanOut struct {
	From string
	To   []string
}

func (FanOut) isEdge() {}

// FanIn merges the listed branch terminals into one aggregation target.
// The target fires only after every source has delivered; the declaration
// order of From fixes the branch order the aggregator reports.
type FanIn struct {
	From []string
	To   string
}

func (FanIn) isEdge() {}
