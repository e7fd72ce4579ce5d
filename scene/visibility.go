package scene

// HysteresisPolicy parameterizes VisibilityHistory: a hide is confirmed
// after HideConfirmFrames consecutive occluded reports, a show after
// ShowConfirmFrames consecutive visible reports.
type HysteresisPolicy struct {
	HideConfirmFrames int
	ShowConfirmFrames int
}

// DefaultHysteresisPolicy matches the teacher's preference for conservative
// defaults elsewhere in the codebase (config.go's configDefaults): three
// frames to confirm a hide and two to confirm a show are enough to kill
// single-frame occlusion popping without adding more than 50ms of
// perceived lag at 60fps.
var DefaultHysteresisPolicy = HysteresisPolicy{HideConfirmFrames: 3, ShowConfirmFrames: 2}

// entry tracks one stable id's confirmed visibility plus its current run of
// consecutive same-signal frames.
type entry struct {
	confirmed     bool
	consecutive   int
	lastRawVisible bool
}

// VisibilityHistory debounces per-frame raw visibility into a confirmed
// visibility signal, keyed by StableID, so a single flickering occlusion
// result doesn't pop an element in and out of a rendered scene.
type VisibilityHistory struct {
	policy  HysteresisPolicy
	entries map[StableID]*entry
}

// NewVisibilityHistory creates a history using policy.
func NewVisibilityHistory(policy HysteresisPolicy) *VisibilityHistory {
	return &VisibilityHistory{policy: policy, entries: map[StableID]*entry{}}
}

// Update feeds this frame's raw visibility for id and returns the confirmed
// (debounced) visibility.
func (h *VisibilityHistory) Update(id StableID, rawVisible bool) bool {
	e, ok := h.entries[id]
	if !ok {
		e = &entry{confirmed: rawVisible, lastRawVisible: rawVisible, consecutive: 1}
		h.entries[id] = e
		return e.confirmed
	}

	if rawVisible == e.lastRawVisible {
		e.consecutive++
	} else {
		e.lastRawVisible = rawVisible
		e.consecutive = 1
	}

	switch {
	case e.confirmed && !rawVisible && e.consecutive >= h.policy.HideConfirmFrames:
		e.confirmed = false
	case !e.confirmed && rawVisible && e.consecutive >= h.policy.ShowConfirmFrames:
		e.confirmed = true
	}
	return e.confirmed
}

// Confirmed returns the last confirmed visibility for id without feeding a
// new observation, defaulting to false for an id never seen.
func (h *VisibilityHistory) Confirmed(id StableID) bool {
	if e, ok := h.entries[id]; ok {
		return e.confirmed
	}
	return false
}

// Reset clears every tracked entry. Called on a camera jump (a cut,
// teleport, or large FOV change) where the prior frames' occlusion signal
// has no bearing on the new viewpoint.
func (h *VisibilityHistory) Reset() {
	h.entries = map[StableID]*entry{}
}

// UpdateSet runs Update for every element of set using its raw Visible
// flag and overwrites Visible with the confirmed value.
func (h *VisibilityHistory) UpdateSet(set *SceneElementSet) {
	for i := range set.Elements {
		e := &set.Elements[i]
		e.Visible = h.Update(e.StableID, e.Visible)
	}
}
