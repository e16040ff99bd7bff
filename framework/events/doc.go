// Package events is the synchronous event dispatcher the request pipeline
// uses as its extension points.
//
// Listeners do not set flags on the event. They return a Result:
//
//	Continue()          next listener
//	RespondWith(res)    answer the request now
//	ReplaceWith(match)  use another route (kernel.route only)
//	StopPropagation()   skip the remaining listeners
//
// The first non-Continue result ends the dispatch and is returned to the
// caller.
package events
