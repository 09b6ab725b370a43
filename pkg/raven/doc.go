// Package raven provides lightweight, client-side error capture and
// reporting for hosted pages and the services behind them.
//
// raven intercepts uncaught exceptions and manually reported messages,
// normalizes their stack traces into canonical frames, applies client-side
// filtering and tagging, and ships the result to a remote collector over a
// fire-and-forget beacon channel. Nothing in the pipeline blocks, and no
// step depends on a collector response.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - Client: Holds configuration, the timeline buffer, and all capture state
//   - RawReport: The input shape produced by an upstream stack source
//   - Frame: The canonical, in-app-classified stack frame
//   - TimelineAction: One pending event (exception, message, http_request, custom)
//   - Transport: Destination for encoded payloads (beacon, memory, multi, stderr)
//
// # Quick Start
//
//	client, err := raven.New("https://publickey@errors.example.com/1",
//	    raven.WithTransport(beacon.New()),
//	    raven.WithTags(map[string]string{"release": "1.4.2"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.CaptureMessage("something happened", nil)
//
// To instrument a callable so panics are reported before propagating:
//
//	worker := client.Wrap(nil, riskyWork).(func(int) error)
//	err := worker(42)
//
// # Design Principles
//
//   - Capture never aborts the host: filtered events, unconfigured clients,
//     and transport failures are all silent no-ops from the caller's view
//   - Delivery is best effort: no retries, no queues, no timeouts
//   - Payloads are built fresh per capture and never persisted
package raven
