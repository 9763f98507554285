package analyze

import (
	"github.com/hazyhaar/axsim/axtree"
)

// LiveRegionInfo describes one live region.
type LiveRegionInfo struct {
	Node       *axtree.Node `json:"-"`
	NodeID     int          `json:"node_id"`
	Role       string       `json:"role"`
	Politeness string       `json:"politeness"`
	Atomic     bool         `json:"atomic,omitempty"`
	Relevant   string       `json:"relevant,omitempty"`
	Busy       bool         `json:"busy,omitempty"`
	// UpdateRate is the observed updates per second, 0 when unknown.
	UpdateRate float64 `json:"update_rate,omitempty"`
}

type liveRegionConfig struct {
	rate    func(*axtree.Node) float64
	maxRate float64
}

// LiveRegionOption tunes LiveRegions.
type LiveRegionOption func(*liveRegionConfig)

// WithUpdateRate supplies observed update rates, typically counted from
// mutation batches of a live page.
func WithUpdateRate(fn func(*axtree.Node) float64) LiveRegionOption {
	return func(c *liveRegionConfig) { c.rate = fn }
}

// WithMaxUpdateRate sets the updates per second above which a region is
// too chatty. Default 1.
func WithMaxUpdateRate(perSecond float64) LiveRegionOption {
	return func(c *liveRegionConfig) { c.maxRate = perSecond }
}

var nameRequiredLive = map[string]bool{
	"log": true, "marquee": true, "timer": true, "region": true,
}

// LiveRegions checks live region configuration.
func LiveRegions(t *axtree.Tree, opts ...LiveRegionOption) *Result[LiveRegionInfo] {
	if t == nil {
		return nil
	}
	cfg := liveRegionConfig{maxRate: 1}
	for _, o := range opts {
		o(&cfg)
	}
	res := &Result[LiveRegionInfo]{Items: []LiveRegionInfo{}, Issues: []Issue{}}

	for _, n := range t.Flatten() {
		if n.Hidden {
			continue
		}
		_, liveRole := axtree.ImplicitLive(n.Role)
		politeness := n.Live
		if !liveRole && (politeness == "" || politeness == "off") {
			continue
		}
		info := LiveRegionInfo{
			Node:       n,
			NodeID:     n.ID,
			Role:       n.Role,
			Politeness: politeness,
			Atomic:     n.Atomic,
			Relevant:   n.Relevant,
			Busy:       n.Busy,
		}
		if cfg.rate != nil {
			info.UpdateRate = cfg.rate(n)
		}

		if n.Attr("aria-live") != "" && n.Role == "generic" {
			res.Issues = append(res.Issues, newIssue(IssueMissingRole, Minor, n,
				"aria-live=%q is set on an element without a live region role", politeness))
		}

		switch {
		case politeness == "assertive" && n.Role != "alert":
			res.Issues = append(res.Issues, newIssue(IssueImproperPoliteness, Moderate, n,
				"%s interrupts the user with assertive announcements", describe(n)))
		case n.Role == "alert" && (politeness == "polite" || politeness == "off"):
			res.Issues = append(res.Issues, newIssue(IssueImproperPoliteness, Minor, n,
				"alert is downgraded to %s", politeness))
		}

		if nameRequiredLive[n.Role] && !n.HasName() {
			res.Issues = append(res.Issues, newIssue(IssueMissingLabel, Minor, n,
				"%s live region has no accessible name", n.Role))
		}

		switch {
		case (n.Role == "timer" || n.Role == "marquee") && politeness != "" && politeness != "off":
			res.Issues = append(res.Issues, newIssue(IssueTooFrequentUpdates, Moderate, n,
				"%s announces every tick with aria-live=%q", n.Role, politeness))
		case info.UpdateRate > cfg.maxRate:
			res.Issues = append(res.Issues, newIssue(IssueTooFrequentUpdates, Moderate, n,
				"%s updates %.1f times per second", describe(n), info.UpdateRate))
		}

		res.Items = append(res.Items, info)
	}

	res.Score = Score(res.Issues, 0)
	return res
}
