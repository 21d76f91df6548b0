// Package wme implements the backend gateway against a WinMentor
// Enterprise DataSnap REST bridge.
//
// The bridge is a fragile endpoint: requests are paced through a token
// bucket, reference-data fetches are paginated and retried with
// exponential backoff, and document submissions are sent exactly once
// per call (the orchestrator owns resubmission). Numeric fields arrive
// as strings on the feed endpoints; amounts are converted to
// domain.Money at this boundary and nowhere else.
package wme
