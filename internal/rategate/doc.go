// Package rategate admits outbound catalog requests under a sliding-window
// limit with enforced minimum spacing between consecutive requests.
package rategate
