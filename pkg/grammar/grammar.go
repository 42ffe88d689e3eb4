package grammar

import (
	"regexp"
	"strconv"
	"strings"
)

// rule pairs a compiled pattern with a builder that produces the command from
// the pattern's capture groups. The builder may reject a superficially
// matching instruction by returning false.
type rule struct {
	name  string
	re    *regexp.Regexp
	build func(g *Grammar, m []string) (Command, bool)
}

// Grammar is an ordered ruleset mapping instruction text to commands.
// Parsing is pure: the same text always yields the same commands.
type Grammar struct {
	rules []rule
}

var (
	ordinalPrefix = regexp.MustCompile(`^\s*\d+[.)]\s*`)
	compoundSplit = regexp.MustCompile(`\s*;\s*|\s+and\s+then\s+|\s*,?\s+then\s+`)
)

// New returns the default grammar. Rule order is part of the contract: more
// specific rules come first, and tests pin the precedence that matters.
func New() *Grammar {
	g := &Grammar{}
	g.rules = []rule{
		{
			name: "login",
			re:   regexp.MustCompile(`(?i)^log\s?in\s+(?:with|as|using)\s+(?:email\s+|username\s+)?"?([^"\s]+)"?\s+and\s+(?:password\s+)?"?([^"\s]+)"?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				return Command{Kind: KindLogin, Target: m[1], Value: m[2]}, true
			},
		},
		{
			name: "conditional",
			re:   regexp.MustCompile(`(?i)^if\s+(.+?),?\s+then\s+(.+)$`),
			build: func(g *Grammar, m []string) (Command, bool) {
				probe, ok := g.parseProbe(m[1])
				if !ok {
					return Command{}, false
				}
				then, ok := g.parseOne(m[2])
				if !ok {
					return Command{}, false
				}
				return Command{Kind: KindConditional, If: &probe, Then: &then}, true
			},
		},
		{
			name: "navigate-url",
			re:   regexp.MustCompile(`(?i)^(?:go\s+to|navigate\s+to|open|visit)\s+"?(https?://\S+?)"?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				return Command{Kind: KindNavigateURL, Value: m[1]}, true
			},
		},
		{
			name: "navigate-page",
			re:   regexp.MustCompile(`(?i)^(?:go\s+to|navigate\s+to|open|visit)\s+(?:the\s+)?"?([a-z][a-z ]*?)"?(?:\s+page)?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				page, ok := canonicalPage(m[1])
				if !ok {
					return Command{}, false
				}
				return Command{Kind: KindNavigatePage, Target: page}, true
			},
		},
		{
			// Must precede the generic page-contains rule: "the page url
			// contains X" would otherwise read as page content.
			name: "assert-url-contains",
			re:   regexp.MustCompile(`(?i)^(?:verify|check|assert|confirm|ensure)\s+(?:that\s+)?the\s+(?:page\s+|current\s+)?url\s+contains\s+"?(.+?)"?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				return Command{Kind: KindAssertURLContains, Value: m[1]}, true
			},
		},
		{
			name: "assert-value",
			re:   regexp.MustCompile(`(?i)^(?:verify|check|assert|confirm|ensure)\s+(?:that\s+)?(?:the\s+)?"?(.+?)"?\s+(?:field\s+)?has\s+(?:the\s+)?value\s+"?(.+?)"?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				return Command{Kind: KindAssertValue, Target: m[1], Value: m[2]}, true
			},
		},
		{
			name: "assert-text-contains",
			re:   regexp.MustCompile(`(?i)^(?:verify|check|assert|confirm|ensure)\s+(?:that\s+)?(?:the\s+)?"?(.+?)"?\s+(?:element\s+|section\s+)?contains\s+(?:the\s+)?text\s+"?(.+?)"?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				if strings.EqualFold(m[1], "page") {
					return Command{Kind: KindAssertPageContains, Value: m[2]}, true
				}
				return Command{Kind: KindAssertTextContains, Target: m[1], Value: m[2]}, true
			},
		},
		{
			name: "assert-visible",
			re:   regexp.MustCompile(`(?i)^(?:verify|check|assert|confirm|ensure)\s+(?:that\s+)?(?:the\s+)?"?(.+?)"?\s+is\s+(?:visible|displayed|shown)$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				return Command{Kind: KindAssertVisible, Target: m[1]}, true
			},
		},
		{
			name: "assert-page-contains",
			re:   regexp.MustCompile(`(?i)^(?:verify|check|assert|confirm|ensure)\s+(?:that\s+)?the\s+page\s+contains\s+"?(.+?)"?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				return Command{Kind: KindAssertPageContains, Value: m[1]}, true
			},
		},
		{
			// Explicit attribute hint must precede the generic fill.
			name: "fill-with-attribute",
			re:   regexp.MustCompile(`(?i)^(?:fill|enter|type)\s+"(.*)"\s+in(?:to)?\s+(?:the\s+)?"?(.+?)"?\s+(?:field\s+)?(?:using|with)\s+(?:the\s+)?attribute\s+"?(.+?)"?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				return Command{Kind: KindFill, Value: m[1], Target: m[2], Attribute: m[3]}, true
			},
		},
		{
			name: "fill",
			re:   regexp.MustCompile(`(?i)^(?:fill|enter|type)\s+"(.*)"\s+in(?:to)?\s+(?:the\s+)?"?(.+?)"?(?:\s+(?:field|input|box))?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				return Command{Kind: KindFill, Value: m[1], Target: m[2]}, true
			},
		},
		{
			name: "select",
			re:   regexp.MustCompile(`(?i)^(?:select|choose|pick)\s+"(.+?)"\s+(?:from|in)\s+(?:the\s+)?"?(.+?)"?(?:\s+(?:dropdown|select|field|list))?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				return Command{Kind: KindSelect, Value: m[1], Target: m[2]}, true
			},
		},
		{
			name: "check",
			re:   regexp.MustCompile(`(?i)^(check|uncheck|tick|untick)\s+(?:the\s+)?"?(.+?)"?(?:\s+checkbox)?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				verb := strings.ToLower(m[1])
				return Command{
					Kind:    KindCheck,
					Target:  m[2],
					Checked: verb == "check" || verb == "tick",
				}, true
			},
		},
		{
			name: "wait",
			re:   regexp.MustCompile(`(?i)^wait\s+(?:for\s+)?(\d+)\s*(?:s|sec|secs|second|seconds)?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				secs, err := strconv.Atoi(m[1])
				if err != nil {
					return Command{}, false
				}
				return Command{Kind: KindWait, Seconds: secs}, true
			},
		},
		{
			name: "click",
			re:   regexp.MustCompile(`(?i)^(?:click|press|tap)(?:\s+on)?(?:\s+the)?\s+"?(.+?)"?(?:\s+(button|link|tab))?$`),
			build: func(_ *Grammar, m []string) (Command, bool) {
				return Command{Kind: KindClick, Target: m[1], Hint: strings.ToLower(m[2])}, true
			},
		},
	}
	return g
}

// Parse matches an instruction against the ruleset. Compound instructions
// joined by "then", "and then" or ";" yield one command per part. The false
// return means no rule matched; that is the caller's cue to escalate to
// planning, not a failure.
func (g *Grammar) Parse(text string) ([]Command, bool) {
	text = normalize(text)
	if text == "" {
		return nil, false
	}

	// "if ... then ..." owns its "then"; never split it.
	if strings.HasPrefix(strings.ToLower(text), "if ") {
		cmd, ok := g.parseOne(text)
		if !ok {
			return nil, false
		}
		return []Command{cmd}, true
	}

	parts := compoundSplit.Split(text, -1)
	cmds := make([]Command, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cmd, ok := g.parseOne(part)
		if !ok {
			// One unmatched part escalates the whole instruction so the
			// planner sees it with its full context.
			return nil, false
		}
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil, false
	}
	return cmds, true
}

// parseOne tries each rule in priority order against a single instruction.
func (g *Grammar) parseOne(text string) (Command, bool) {
	text = normalize(text)
	for _, r := range g.rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if cmd, ok := r.build(g, m); ok {
			return cmd, true
		}
	}
	return Command{}, false
}

// parseProbe parses the "if" clause of a conditional. Probes are usually
// phrased as bare conditions ("the cookie banner is visible"), so when the
// clause does not parse on its own it is retried as an assertion.
func (g *Grammar) parseProbe(text string) (Command, bool) {
	if cmd, ok := g.parseOne(text); ok {
		return cmd, true
	}
	return g.parseOne("verify that " + normalize(text))
}

// RuleNames returns rule names in evaluation order. Used by tests to pin
// precedence.
func (g *Grammar) RuleNames() []string {
	names := make([]string, len(g.rules))
	for i, r := range g.rules {
		names[i] = r.name
	}
	return names
}

// normalize strips ordinal prefixes ("1. ", "2) "), surrounding whitespace
// and a trailing period.
func normalize(text string) string {
	text = ordinalPrefix.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ".")
	return strings.TrimSpace(text)
}

// canonicalPage maps a spoken page name onto its canonical identifier.
func canonicalPage(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "home", "homepage", "home page", "main", "landing":
		return "homepage", true
	case "login", "log in", "sign in", "signin":
		return "login", true
	case "contact", "contact us":
		return "contact", true
	case "register", "registration", "sign up", "signup":
		return "register", true
	}
	return "", false
}
