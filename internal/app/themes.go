package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"wordsearch/internal/domain"
)

// RandomTheme asks Pick for a random theme
const RandomTheme = "random"

// ErrUnknownTheme is returned when a theme is looked up by a name the catalog does not hold
var ErrUnknownTheme = errors.New("unknown theme")

// Theme is a named collection of word sets. A themed game hides every word
// of every set.
type Theme struct {
	Name     string     `json:"name"`
	WordSets [][]string `json:"wordSets"`
}

// DefaultThemes is the built-in theme table
var DefaultThemes = []Theme{
	{
		Name: "Math! (please don't run away)",
		WordSets: [][]string{
			{"asymptote", "differential", "algorithm", "boolean"},
			{"euclidean", "integral", "logarithm", "matrix"},
			{"riemann", "polyhedron", "theta", "vector"},
			{"binomial", "pythagoras", "eccentricity", "unit circle"},
			{"derivative", "polar coordinates", "tangent", "scalene"},
		},
	},
	{
		Name: "Astronomy and Physics!",
		WordSets: [][]string{
			{"circumpolar", "comet", "asteroid", "declination"},
			{"earthshine", "albedo", "quantum", "olivine"},
			{"pyroxene", "decoherence", "fermion", "quark"},
			{"gluon", "redshift", "inflaton", "planetesimal"},
			{"anthropic", "exogenesis", "atom", "planck"},
		},
	},
	{
		Name: "Philosophy!",
		WordSets: [][]string{
			{"metaphysics", "modus ponens", "modus tollens", "analogy"},
			{"a priori", "a posteriori", "conditional", "nietzsche"},
			{"diogenes", "paradox", "occam's razor", "causality"},
			{"induction", "deduction", "ontology", "theology"},
			{"syllogism", "ethics", "karl marx", "pluralism"},
		},
	},
	{
		Name: "World Mythology :D",
		WordSets: [][]string{
			{"chronos", "aether", "hypnos", "psyche"},
			{"jupiter", "sol", "chaos", "pandora"},
			{"thor", "valhalla", "amaterasu", "osiris"},
			{"mazu", "izanami", "susanoo", "xipe totec"},
			{"mercury", "bastet", "sekhmet", "ptah"},
		},
	},
	{
		Name: "Shades of Purple!",
		WordSets: [][]string{
			{"violet", "periwinkle", "plum", "grape"},
			{"orchid", "wine", "mauve", "lavender"},
			{"lilac", "mulberry", "eggplant", "heliotrope"},
			{"liseran purple", "amethyst", "fuchsia", "pomp and power"},
			{"sangria", "boysenberry", "thistle", "heather"},
		},
	},
	{
		Name: "The Many Different Flavors of Cat!",
		WordSets: [][]string{
			{"Russian Blue", "Siamese", "Persian", "Sphynx"},
			{"Ragdoll", "Singapura", "Snowshoe", "Turkish Van"},
			{"Maine Coon", "Devon Rex", "Charteux", "Scottish Fold"},
			{"Himalayan", "Ragamuffin", "Bombay", "Siberian"},
			{"Egyptian Mau", "Norwegian Forest Cat", "Abyssinian", "York Chocolate"},
		},
	},
}

// Word is a theme word ready for the generator: Letters is what gets
// hidden in the grid, Label is what the word list shows.
type Word struct {
	Label   string
	Letters string
}

// NormalizeWord uppercases a raw theme word and strips everything but
// the letters A-Z, folding accents first ("Café au lait" hides CAFEAULAIT).
func NormalizeWord(raw string) (Word, error) {
	label := cases.Upper(language.Und).String(strings.TrimSpace(raw))

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, label)
	if err != nil {
		return Word{}, fmt.Errorf("normalize %q: %w", raw, err)
	}

	var b strings.Builder
	for _, r := range folded {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}

	letters := b.String()
	if len(letters) < 2 {
		return Word{}, fmt.Errorf("%w: %q", domain.ErrInvalidWord, raw)
	}

	return Word{Label: label, Letters: letters}, nil
}

// NormalizeWords normalizes every word of a set, failing on the first bad one
func NormalizeWords(raw []string) ([]Word, error) {
	words := make([]Word, 0, len(raw))
	for _, r := range raw {
		w, err := NormalizeWord(r)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, nil
}

// ThemeCatalog is the table of themes new games are drawn from
type ThemeCatalog struct {
	themes []Theme
}

// NewThemeCatalog validates themes and builds a catalog from them
func NewThemeCatalog(themes []Theme) (*ThemeCatalog, error) {
	if len(themes) == 0 {
		return nil, errors.New("theme catalog is empty")
	}

	seen := make(map[string]bool)
	for _, theme := range themes {
		if theme.Name == "" || strings.EqualFold(theme.Name, RandomTheme) {
			return nil, fmt.Errorf("invalid theme name %q", theme.Name)
		}
		if seen[theme.Name] {
			return nil, fmt.Errorf("duplicate theme %q", theme.Name)
		}
		seen[theme.Name] = true

		if len(theme.WordSets) == 0 {
			return nil, fmt.Errorf("theme %q has no word sets", theme.Name)
		}
		for _, set := range theme.WordSets {
			if len(set) == 0 {
				return nil, fmt.Errorf("theme %q has an empty word set", theme.Name)
			}
			if _, err := NormalizeWords(set); err != nil {
				return nil, fmt.Errorf("theme %q: %w", theme.Name, err)
			}
		}
	}

	return &ThemeCatalog{themes: themes}, nil
}

// LoadThemeCatalog reads a JSON array of themes from path
func LoadThemeCatalog(path string) (*ThemeCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read themes file: %w", err)
	}

	var themes []Theme
	if err := json.Unmarshal(data, &themes); err != nil {
		return nil, fmt.Errorf("decode themes file: %w", err)
	}

	return NewThemeCatalog(themes)
}

// Names returns the theme names in catalog order
func (c *ThemeCatalog) Names() []string {
	names := make([]string, len(c.themes))
	for i, t := range c.themes {
		names[i] = t.Name
	}
	return names
}

// Get returns the theme called name
func (c *ThemeCatalog) Get(name string) (Theme, error) {
	for _, t := range c.themes {
		if t.Name == name {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// Pick chooses the theme for a new game: a random one for "" or "random",
// the named one when it exists, and the first theme otherwise.
func (c *ThemeCatalog) Pick(name string) Theme {
	if name == "" || name == RandomTheme {
		return c.themes[rand.Intn(len(c.themes))]
	}
	if t, err := c.Get(name); err == nil {
		return t
	}
	return c.themes[0]
}

// Words returns every word of the theme, set by set
func (t Theme) Words() []string {
	var out []string
	for _, set := range t.WordSets {
		out = append(out, set...)
	}
	return out
}
