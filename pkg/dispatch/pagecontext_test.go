package dispatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleFragment = `
<div class="panel">
  <script>console.log("noise")</script>
  <style>.x { color: red }</style>
  <h2>Add Agent</h2>
  <form action="/agents" method="post">
    <label for="first">First Name</label>
    <input id="first" name="first_name" type="text" placeholder="Jane">
    <label for="last">Last Name</label>
    <input id="last" name="last_name" type="text">
    <input name="email" type="email" placeholder="you@example.com">
    <input type="hidden" name="csrf" value="tok">
    <select name="role"><option>Admin</option></select>
    <input type="submit" value="Create Agent">
  </form>
  <button>Cancel</button>
  <a href="/agents">Back to agents</a>
  <span role="button">More options</span>
</div>`

func TestSummarize(t *testing.T) {
	s := Summarize(sampleFragment)

	assert.ElementsMatch(t, []string{"Create Agent", "Cancel", "More options"}, s.Buttons)
	assert.Equal(t, []string{"Back to agents"}, s.Links)
	// first, last, email, select; hidden input excluded
	assert.Equal(t, 4, s.InputCount)
	assert.True(t, s.HasFormCluster())
}

func TestSummarize_NoFormCluster(t *testing.T) {
	s := Summarize(`<div><input type="text" name="q"><button>Search</button></div>`)
	assert.Equal(t, 1, s.InputCount)
	assert.False(t, s.HasFormCluster())
}

func TestCleanHTML_DropsNoiseKeepsTargeting(t *testing.T) {
	cleaned := CleanHTML(sampleFragment, 10000)

	assert.NotContains(t, cleaned, "console.log")
	assert.NotContains(t, cleaned, "color: red")
	assert.Contains(t, cleaned, `name="first_name"`)
	assert.Contains(t, cleaned, `placeholder="Jane"`)
	assert.Contains(t, cleaned, "Add Agent")
	assert.Contains(t, cleaned, `role="button"`)
	// method is not a targeting attribute
	assert.NotContains(t, cleaned, "method=")
}

func TestCleanHTML_BoundsLength(t *testing.T) {
	fragment := "<div>" + strings.Repeat("<p>block of text</p>", 1000) + "</div>"
	cleaned := CleanHTML(fragment, 500)
	assert.LessOrEqual(t, len(cleaned), 500)
	assert.NotEmpty(t, cleaned)
}

func TestCleanHTML_InvalidInputIsEmpty(t *testing.T) {
	// html.Parse is extremely tolerant; even garbage parses. The function
	// must still return something bounded rather than erroring.
	out := CleanHTML("<<<not html>>>", 100)
	assert.LessOrEqual(t, len(out), 100)
}
