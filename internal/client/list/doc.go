// Package list implements the list controller shared by every resource
// screen: it turns paging and search intent into a fetched page plus
// loading/error state.
//
// Behaviour
//
//   - Load fetches page 1.
//   - SetSearch waits for the debounce window to pass without another call,
//     then fetches page 1 with the final term. Intermediate terms never fetch.
//   - SetPage fetches immediately; pages outside [1, LastPage] are rejected
//     with ErrPageOutOfRange and nothing changes.
//   - Every fetch gets a sequence number and its own context. Starting a new
//     fetch cancels the previous one, and a response whose sequence is not the
//     latest is dropped, so the state always reflects the newest request.
//   - A failed fetch clears Items and sets Err; Items and Err are never both set.
//
// Controllers attached to a Bus refetch whenever a mutation publishes their
// resource name.
package list
