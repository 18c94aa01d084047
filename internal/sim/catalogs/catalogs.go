package catalogs

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

type Catalogs struct {
	Blocks  BlockCatalog
	Items   ItemCatalog
	Recipes RecipeCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	Code     string            `json:"code"`
	Material string            `json:"material"` // "air","soil","gravel","stone","ore"
	Solid    bool              `json:"solid,omitempty"`
	Variant  map[string]string `json:"variant,omitempty"`
}

type ItemCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ItemDef
	PaletteDigest string
	DefsDigest    string
}

type ItemDef struct {
	Code       string            `json:"code"`
	Variant    map[string]string `json:"variant,omitempty"`
	Durability int               `json:"durability,omitempty"`
	DamagedBy  []string          `json:"damaged_by,omitempty"`
	MaxStack   int               `json:"max_stack,omitempty"`
}

// DamagedFrom reports whether the item loses durability from source ("block_breaking", ...).
func (d ItemDef) DamagedFrom(source string) bool {
	for _, s := range d.DamagedBy {
		if s == source {
			return true
		}
	}
	return false
}

type RecipeCatalog struct {
	ByID   map[string]RecipeDef
	Order  []string
	Digest string
}

type RecipeDef struct {
	RecipeID string      `json:"recipe_id"`
	Inputs   []ItemCount `json:"inputs"`
	Output   ItemCount   `json:"output"`
}

type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count,omitempty"`
}

// N is the effective count (missing counts mean one).
func (c ItemCount) N() int {
	if c.Count <= 0 {
		return 1
	}
	return c.Count
}

// Accepts reports whether an item code satisfies this recipe slot. A trailing
// "*" matches any suffix.
func (c ItemCount) Accepts(code string) bool {
	if prefix, ok := strings.CutSuffix(c.Item, "*"); ok {
		return strings.HasPrefix(code, prefix)
	}
	return c.Item == code
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadRecipes(filepath.Join(configDir, "recipes.json"), &c.Recipes, &c.Items); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// validate checks raw against the embedded schema of the same base name.
func validate(name string, raw []byte) error {
	schemaName := strings.TrimSuffix(name, ".json") + ".schema.json"
	src, err := schemaFS.ReadFile("schema/" + schemaName)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	sch, err := jsonschema.CompileString(schemaName, string(src))
	if err != nil {
		return fmt.Errorf("%s: compile schema: %w", name, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseBlocks(raw, out)
}

func parseBlocks(raw []byte, out *BlockCatalog) error {
	if err := validate("blocks.json", raw); err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if _, dup := out.Defs[d.Code]; dup {
			return fmt.Errorf("blocks.json: duplicate code %q", d.Code)
		}
		out.Defs[d.Code] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Ensure air exists and is palette id 0.
	if _, ok := out.Defs["air"]; !ok {
		return fmt.Errorf("blocks.json: missing air")
	}
	ids = append([]string{"air"}, filterOut(ids, "air")...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseItems(raw, out)
}

func parseItems(raw []byte, out *ItemCatalog) error {
	if err := validate("items.json", raw); err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if _, dup := out.Defs[d.Code]; dup {
			return fmt.Errorf("items.json: duplicate code %q", d.Code)
		}
		out.Defs[d.Code] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadRecipes(path string, out *RecipeCatalog, items *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		// Recipes are optional.
		if os.IsNotExist(err) {
			out.Digest = sha256Hex(nil)
			out.ByID = map[string]RecipeDef{}
			return nil
		}
		return err
	}
	return parseRecipes(raw, out, items)
}

func parseRecipes(raw []byte, out *RecipeCatalog, items *ItemCatalog) error {
	if err := validate("recipes.json", raw); err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []RecipeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("recipes.json: %w", err)
	}
	out.ByID = map[string]RecipeDef{}
	out.Order = out.Order[:0]
	for _, r := range defs {
		if _, dup := out.ByID[r.RecipeID]; dup {
			return fmt.Errorf("recipes.json: duplicate recipe_id %q", r.RecipeID)
		}
		if _, ok := items.Defs[r.Output.Item]; !ok {
			return fmt.Errorf("recipes.json: %s: unknown output item %q", r.RecipeID, r.Output.Item)
		}
		out.ByID[r.RecipeID] = r
		out.Order = append(out.Order, r.RecipeID)
	}
	return nil
}

func filterOut(in []string, remove string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == remove {
			continue
		}
		out = append(out, s)
	}
	return out
}
