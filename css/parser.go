// Package css turns stylesheet text into ordered rules with raw declaration
// blocks. It does not compute cascade or inheritance.
package css

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS parse error", zap.Error(err))
				sheet.Warnings = append(sheet.Warnings, "parse error: "+err.Error())
			}
			return sheet

		case css.BeginAtRuleGrammar:
			atRule := strings.ToLower(string(data))
			switch atRule {
			case "@media":
				query := joinTokens(parser.Values())
				rules := p.parseMediaBlockRules(parser)
				p.log.Debug("Parsed @media block", zap.String("query", query), zap.Int("rules", len(rules)))
				sheet.Items = append(sheet.Items, StylesheetItem{
					MediaBlock: &MediaBlock{Query: query, Rules: rules},
				})
			case "@font-face":
				ff := p.parseFontFace(parser)
				sheet.Items = append(sheet.Items, StylesheetItem{FontFace: &ff})
			default:
				p.skipAtRuleBlock(parser)
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			}

		case css.AtRuleGrammar:
			// @-rule without block, only @import is of interest
			atRule := strings.ToLower(string(data))
			if atRule == "@import" {
				if url := extractImportURL(parser.Values()); url != "" {
					sheet.Items = append(sheet.Items, StylesheetItem{Import: &url})
					p.log.Debug("Parsed @import", zap.String("url", url))
				}
			} else {
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			}

		case css.BeginRulesetGrammar:
			selectors := splitSelectors(data, parser.Values())
			props, order := p.parseDeclarations(parser)
			for _, rule := range newRules(selectors, props, order) {
				sheet.Items = append(sheet.Items, StylesheetItem{Rule: &rule})
			}

		case css.QualifiedRuleGrammar:
			// qualified rule without block is not a style rule
			sheet.Warnings = append(sheet.Warnings, "rule without declaration block: "+joinTokens(parser.Values()))
		}
	}
}

// ParseInline parses declarations of a style attribute.
func (p *Parser) ParseInline(style string) Rule {
	rule := Rule{Properties: make(map[string]Value)}
	if strings.TrimSpace(style) == "" {
		return rule
	}

	parser := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("Inline style parse error", zap.String("style", style), zap.Error(err))
			}
			return rule
		case css.DeclarationGrammar:
			addDeclaration(&rule, string(data), parser.Values())
		}
	}
}

func newRules(selectors []string, props map[string]Value, order []string) []Rule {
	rules := make([]Rule, 0, len(selectors))
	for _, sel := range selectors {
		copied := make(map[string]Value, len(props))
		for k, v := range props {
			copied[k] = v
		}
		rules = append(rules, Rule{
			Selector:   sel,
			Properties: copied,
			Order:      append([]string(nil), order...),
		})
	}
	return rules
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			s := string(t.Data)
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// splitSelectors builds selector text from token data and splits grouped
// selectors. Whitespace runs are collapsed to a single space.
func splitSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *css.Parser) (map[string]Value, []string) {
	rule := Rule{Properties: make(map[string]Value)}
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return rule.Properties, rule.Order

		case css.DeclarationGrammar:
			addDeclaration(&rule, string(data), parser.Values())

		case css.CustomPropertyGrammar:
			// CSS custom properties (--var) are not used by placeholders
			continue
		}
	}
}

func addDeclaration(rule *Rule, name string, tokens []css.Token) {
	name = strings.ToLower(strings.TrimSpace(name))
	val, ok := parsePropertyValue(tokens)
	if name == "" || !ok {
		return
	}
	if prev, exists := rule.Properties[name]; exists {
		// normal declaration never overrides important one
		if prev.Important && !val.Important {
			return
		}
	} else {
		rule.Order = append(rule.Order, name)
	}
	rule.Properties[name] = val
}

// trimTokens removes leading and trailing whitespace tokens.
func trimTokens(tokens []css.Token) []css.Token {
	for len(tokens) > 0 && tokens[0].TokenType == css.WhitespaceToken {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].TokenType == css.WhitespaceToken {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// stripImportant removes trailing "!important" reporting whether it was present.
func stripImportant(tokens []css.Token) ([]css.Token, bool) {
	tokens = trimTokens(tokens)
	n := len(tokens)
	if n < 2 || tokens[n-1].TokenType != css.IdentToken || !strings.EqualFold(string(tokens[n-1].Data), "important") {
		return tokens, false
	}
	i := n - 2
	for i >= 0 && tokens[i].TokenType == css.WhitespaceToken {
		i--
	}
	if i < 0 || tokens[i].TokenType != css.DelimToken || string(tokens[i].Data) != "!" {
		return tokens, false
	}
	return trimTokens(tokens[:i]), true
}

// joinTokens serializes tokens collapsing whitespace. Strings are always
// written in double quotes the way browsers serialize them.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	pendingSpace := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		switch t.TokenType {
		case css.StringToken:
			sb.WriteString(`"` + cssEscapeDoubleQuoted(unescapeString(unquote(string(t.Data)))) + `"`)
		case css.CommaToken:
			// the tokenizer drops whitespace after commas
			sb.WriteByte(',')
			pendingSpace = true
		default:
			sb.Write(t.Data)
		}
	}
	return sb.String()
}

// unescapeString drops backslashes before non-hex characters of a CSS string
// body. Hex escapes are kept as written.
func unescapeString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && !isHex(s[i+1]) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) (Value, bool) {
	tokens, important := stripImportant(tokens)
	if len(tokens) == 0 {
		return Value{}, false
	}

	val := Value{Raw: joinTokens(tokens), Important: important}

	if len(tokens) == 1 {
		t := tokens[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unescapeString(unquote(string(t.Data)))
		case css.HashToken:
			val.Keyword = string(t.Data)
		default:
			val.Keyword = val.Raw
		}
		return val, true
	}

	// functions (rgb(), url()) and multi-value properties
	val.Keyword = val.Raw
	return val, true
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	return num, strings.ToLower(s[numEnd:])
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseFontFace parses an @font-face block.
func (p *Parser) parseFontFace(parser *css.Parser) FontFace {
	ff := FontFace{}

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return ff

		case css.DeclarationGrammar:
			tokens := trimTokens(parser.Values())
			if len(tokens) == 0 {
				continue
			}
			valStr := joinTokens(tokens)

			switch strings.ToLower(string(data)) {
			case "font-family":
				ff.Family = unquote(valStr)
			case "src":
				ff.Src = valStr
			case "font-style":
				ff.Style = strings.ToLower(valStr)
			case "font-weight":
				ff.Weight = strings.ToLower(valStr)
			}
		}
	}
}

// parseMediaBlockRules parses rules inside an @media block and returns them.
func (p *Parser) parseMediaBlockRules(parser *css.Parser) []Rule {
	var rules []Rule

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return rules

		case css.BeginRulesetGrammar:
			selectors := splitSelectors(data, parser.Values())
			props, order := p.parseDeclarations(parser)
			rules = append(rules, newRules(selectors, props, order)...)

		case css.BeginAtRuleGrammar:
			p.skipAtRuleBlock(parser)
		}
	}
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
