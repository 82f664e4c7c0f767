// Session abstracts the rendered browser page so harvesting logic can be
// tested against fakes. One session maps to one tab; navigation on a session
// is strictly sequential because the underlying page is shared mutable state.

package browser

import "time"

type Session interface {
	//Navigate loads url and waits for the network to go idle
	Navigate(url string, timeout time.Duration) error

	//WaitForSelector blocks until the selector matches or the timeout hits
	WaitForSelector(selector string, timeout time.Duration) error

	//HTML returns the full serialized DOM of the current page
	HTML() (string, error)

	//ScrollBy scrolls the viewport forward by px
	ScrollBy(px int) error

	//ScrollHeight reads the current total scrollable height
	ScrollHeight() (int, error)

	//Close releases the tab; safe to call more than once
	Close() error
}
