// Package grammar turns loosely written test instructions into structured
// commands. Rules are evaluated in a fixed priority order so that specific
// phrasings ("the page url contains ...") are never swallowed by their
// generic counterparts ("the page contains ...").
package grammar

// Kind identifies the variant of a structured command.
type Kind string

const (
	KindNavigatePage       Kind = "navigate_page"        // navigate to a well-known named page
	KindNavigateURL        Kind = "navigate_url"         // navigate to an explicit URL
	KindClick              Kind = "click"                // click a named element
	KindFill               Kind = "fill"                 // fill a value into a named field
	KindSelect             Kind = "select"               // choose an option from a named dropdown
	KindWait               Kind = "wait"                 // pause for a number of seconds
	KindAssertURLContains  Kind = "assert_url_contains"  // current URL contains a fragment
	KindAssertPageContains Kind = "assert_page_contains" // page body contains text
	KindAssertVisible      Kind = "assert_visible"       // a named element is visible
	KindAssertTextContains Kind = "assert_text_contains" // a named element contains text
	KindAssertValue        Kind = "assert_value"         // a named field holds a value
	KindCheck              Kind = "check"                // check or uncheck a checkbox
	KindLogin              Kind = "login"                // fill credentials and submit
	KindConditional        Kind = "conditional"          // run a step only if a probe succeeds
)

// Command is the parsed, executable form of one instruction. Which fields are
// populated depends on Kind; the zero value of the rest is ignored.
type Command struct {
	Kind Kind

	// Target is the element identifier, named page, or field the command
	// acts on.
	Target string

	// Value carries fill/select input, expected assertion text, a URL, or
	// the login password.
	Value string

	// Attribute is an explicit attribute hint for fill commands
	// ("Fill ... using attribute data-field").
	Attribute string

	// Hint is an element-kind hint harvested from the phrasing
	// ("button", "link", "tab").
	Hint string

	// Seconds is the wait duration for KindWait.
	Seconds int

	// Checked distinguishes check (true) from uncheck (false).
	Checked bool

	// If and Then carry the probe and consequent of KindConditional.
	If   *Command
	Then *Command
}
