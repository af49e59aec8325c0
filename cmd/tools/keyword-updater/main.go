// cmd/tools/keyword-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"
)

const defaultTablePath = "configs/keyword-tables.json"

var tablePath string

// tableFile mirrors the overlay format the keywords loader accepts. A
// present classifier or watchlist section replaces the whole compiled-in
// table it names, so add-keyword seeds missing sections from the
// defaults before appending. Ingredient tier tables apply per macro
// group, so only the edited group is seeded.
type tableFile struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated,omitempty"`

	Category   keywords.Table `json:"category,omitempty"`
	Sourcing   keywords.Table `json:"sourcing,omitempty"`
	Processing keywords.Table `json:"processing,omitempty"`
	Adequacy   keywords.Table `json:"adequacy,omitempty"`

	Ingredients *keywords.IngredientTables `json:"ingredients,omitempty"`

	DirtyDozen keywords.GroupList `json:"dirtyDozen,omitempty"`
	Synthetic  keywords.GroupList `json:"synthetic,omitempty"`
	Longevity  keywords.GroupList `json:"longevity,omitempty"`

	Brands []string `json:"brands,omitempty"`
}

var (
	taxonomySections   = map[string]bool{"category": true, "sourcing": true, "processing": true, "adequacy": true}
	ingredientSections = map[string]bool{"protein": true, "fat": true, "carb": true, "fiber": true}
	watchlistSections  = map[string]bool{"dirtyDozen": true, "synthetic": true, "longevity": true}
)

// knownTiers are the tiers keywords can classify into. Other is derived
// when nothing matches and never carries a vocabulary of its own.
var knownTiers = map[string]bool{
	string(models.TierHigh):     true,
	string(models.TierGood):     true,
	string(models.TierModerate): true,
	string(models.TierLow):      true,
}

func main() {
	addCmd := flag.NewFlagSet("add-keyword", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	bumpCmd := flag.NewFlagSet("bump-version", flag.ExitOnError)

	// Add-keyword command flags
	section := addCmd.String("section", "", "Section (category, sourcing, processing, adequacy, protein, fat, carb, fiber, dirtyDozen, synthetic, longevity, brands)")
	variant := addCmd.String("variant", "", "Taxonomy variant for classifier sections (e.g., Raw)")
	tier := addCmd.String("tier", "", "Quality tier for ingredient sections (High, Good, Moderate, Low)")
	group := addCmd.String("group", "", "Watchlist group for dirtyDozen, synthetic and longevity (e.g., Corn)")
	keyword := addCmd.String("keyword", "", "Keyword to add (stored lower-cased; matching normalizes text)")
	supporting := addCmd.Bool("supporting", false, "Add as a supporting keyword instead of a main one")
	addCmd.StringVar(&tablePath, "path", defaultTablePath, "Path to keyword table file")

	// Validate command flags
	validateCmd.StringVar(&tablePath, "path", defaultTablePath, "Path to keyword table file")

	// Bump-version command flags
	setVersion := bumpCmd.String("set", "", "Explicit new version (default bumps the patch number)")
	bumpCmd.StringVar(&tablePath, "path", defaultTablePath, "Path to keyword table file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-keyword":
		addCmd.Parse(os.Args[2:])
		kw := strings.ToLower(strings.TrimSpace(*keyword))
		if *section == "" || kw == "" {
			fmt.Println("Error: section and keyword are required for add-keyword.")
			addCmd.Usage()
			os.Exit(1)
		}
		key, err := sectionKey(*section, *variant, *tier, *group, *supporting)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if err := addKeyword(*section, key, kw, *supporting); err != nil {
			fmt.Printf("Error adding keyword: %v\n", err)
			os.Exit(1)
		}
		if key != "" {
			fmt.Printf("Added %q to %s/%s\n", kw, *section, key)
		} else {
			fmt.Printf("Added %q to %s\n", kw, *section)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateTables(); err != nil {
			fmt.Printf("Keyword table validation failed: %v\n", err)
			os.Exit(1)
		}

	case "bump-version":
		bumpCmd.Parse(os.Args[2:])
		if err := bumpVersion(*setVersion); err != nil {
			fmt.Printf("Error bumping version: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

// sectionKey checks the flag combination for the section kind and
// returns the key the keyword goes under (empty for brands).
func sectionKey(section, variant, tier, group string, supporting bool) (string, error) {
	switch {
	case taxonomySections[section]:
		if variant == "" {
			return "", fmt.Errorf("-variant is required for the %s section", section)
		}
		return variant, nil
	case ingredientSections[section]:
		if tier == "" {
			return "", fmt.Errorf("-tier is required for the %s section", section)
		}
		if !knownTiers[tier] {
			return "", fmt.Errorf("unknown tier %q (want High, Good, Moderate or Low)", tier)
		}
		return tier, nil
	case watchlistSections[section]:
		if group == "" {
			return "", fmt.Errorf("-group is required for the %s section", section)
		}
		if supporting {
			return "", fmt.Errorf("watchlist groups have no supporting keywords")
		}
		return group, nil
	case section == "brands":
		if supporting {
			return "", fmt.Errorf("the brand list has no supporting keywords")
		}
		return "", nil
	default:
		return "", fmt.Errorf("unknown section %q", section)
	}
}

func addKeyword(section, key, kw string, supporting bool) error {
	tf, created, err := loadTableFile()
	if err != nil {
		return err
	}
	defaults := keywords.Default()

	switch {
	case taxonomySections[section]:
		table := tf.taxonomy(section)
		if *table == nil {
			*table = cloneTable(defaultTaxonomy(defaults, section))
		}
		set, ok := (*table)[key]
		if !ok {
			fmt.Printf("Variant %q is new to the %s table\n", key, section)
			set = keywords.Set{Main: []string{}, Supporting: []string{}}
		}
		if err := appendToSet(&set, kw, supporting); err != nil {
			return err
		}
		(*table)[key] = set

	case ingredientSections[section]:
		if tf.Ingredients == nil {
			tf.Ingredients = &keywords.IngredientTables{}
		}
		tiers := tf.ingredientTiers(section)
		if *tiers == nil {
			*tiers = cloneTierTable(defaultTiers(defaults, section))
		}
		tk := models.QualityTier(key)
		set, ok := (*tiers)[tk]
		if !ok {
			set = keywords.Set{Main: []string{}, Supporting: []string{}}
		}
		if err := appendToSet(&set, kw, supporting); err != nil {
			return err
		}
		(*tiers)[tk] = set

	case watchlistSections[section]:
		list := tf.watchlist(section)
		if *list == nil {
			*list = cloneGroupList(defaultWatchlist(defaults, section))
		}
		if containsKeyword((*list)[key], kw) {
			return fmt.Errorf("%q is already in group %q", kw, key)
		}
		(*list)[key] = append((*list)[key], kw)

	default: // brands
		if tf.Brands == nil {
			tf.Brands = cloneStrings(defaults.Brands)
		}
		if containsKeyword(tf.Brands, kw) {
			return fmt.Errorf("%q is already a known brand", kw)
		}
		tf.Brands = append(tf.Brands, kw)
	}

	tf.LastUpdated = time.Now().Format("2006-01-02")
	if created {
		fmt.Printf("Creating new table file %s (version %s)\n", tablePath, tf.Version)
	}
	return saveTableFile(tf)
}

func validateTables() error {
	raw, err := os.ReadFile(tablePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", tablePath, err)
	}
	if err := keywords.Validate(raw); err != nil {
		return err
	}

	// Apply the overlay too, so unmarshal mismatches surface here
	// rather than at worker startup.
	lib, err := keywords.Load(tablePath)
	if err != nil {
		return err
	}
	fmt.Printf("Keyword tables valid: version %s (last updated %s)\n", lib.Version, lib.LastUpdated)
	return nil
}

func bumpVersion(setTo string) error {
	raw, err := os.ReadFile(tablePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", tablePath, err)
	}
	if err := keywords.Validate(raw); err != nil {
		return err
	}
	var tf tableFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return fmt.Errorf("failed to parse %s: %w", tablePath, err)
	}

	next := setTo
	if next == "" {
		next, err = bumpPatch(tf.Version)
		if err != nil {
			return err
		}
	}
	tf.Version = next
	tf.LastUpdated = time.Now().Format("2006-01-02")

	if err := saveTableFile(&tf); err != nil {
		return err
	}
	fmt.Printf("Bumped keyword tables to version %s\n", next)
	return nil
}

func bumpPatch(version string) (string, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("version %q is not MAJOR.MINOR.PATCH", version)
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", fmt.Errorf("version %q is not MAJOR.MINOR.PATCH", version)
	}
	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1), nil
}

func loadTableFile() (*tableFile, bool, error) {
	raw, err := os.ReadFile(tablePath)
	if os.IsNotExist(err) {
		return &tableFile{Version: keywords.Default().Version}, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", tablePath, err)
	}
	if err := keywords.Validate(raw); err != nil {
		return nil, false, err
	}
	var tf tableFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", tablePath, err)
	}
	return &tf, false, nil
}

func saveTableFile(tf *tableFile) error {
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal table file: %w", err)
	}
	data = append(data, '\n')

	// Never write a file the loader would reject.
	if err := keywords.Validate(data); err != nil {
		return fmt.Errorf("refusing to write invalid table file: %w", err)
	}

	dir := filepath.Dir(tablePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(tablePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write table file: %w", err)
	}
	return nil
}

func appendToSet(set *keywords.Set, kw string, supporting bool) error {
	if containsKeyword(set.Main, kw) || containsKeyword(set.Supporting, kw) {
		return fmt.Errorf("%q is already present", kw)
	}
	if supporting {
		set.Supporting = append(set.Supporting, kw)
	} else {
		set.Main = append(set.Main, kw)
	}
	return nil
}

func containsKeyword(list []string, kw string) bool {
	for _, existing := range list {
		if existing == kw {
			return true
		}
	}
	return false
}

func (tf *tableFile) taxonomy(section string) *keywords.Table {
	switch section {
	case "category":
		return &tf.Category
	case "sourcing":
		return &tf.Sourcing
	case "processing":
		return &tf.Processing
	default:
		return &tf.Adequacy
	}
}

func defaultTaxonomy(lib *keywords.Library, section string) keywords.Table {
	switch section {
	case "category":
		return lib.Category
	case "sourcing":
		return lib.Sourcing
	case "processing":
		return lib.Processing
	default:
		return lib.Adequacy
	}
}

func (tf *tableFile) ingredientTiers(section string) *keywords.TierTable {
	switch section {
	case "protein":
		return &tf.Ingredients.Protein
	case "fat":
		return &tf.Ingredients.Fat
	case "carb":
		return &tf.Ingredients.Carb
	default:
		return &tf.Ingredients.Fiber
	}
}

func defaultTiers(lib *keywords.Library, section string) keywords.TierTable {
	switch section {
	case "protein":
		return lib.Ingredients.Protein
	case "fat":
		return lib.Ingredients.Fat
	case "carb":
		return lib.Ingredients.Carb
	default:
		return lib.Ingredients.Fiber
	}
}

func (tf *tableFile) watchlist(section string) *keywords.GroupList {
	switch section {
	case "dirtyDozen":
		return &tf.DirtyDozen
	case "synthetic":
		return &tf.Synthetic
	default:
		return &tf.Longevity
	}
}

func defaultWatchlist(lib *keywords.Library, section string) keywords.GroupList {
	switch section {
	case "dirtyDozen":
		return lib.DirtyDozen
	case "synthetic":
		return lib.Synthetic
	default:
		return lib.Longevity
	}
}

// cloneStrings always returns a non-nil slice so seeded sections
// marshal as arrays, which the overlay schema requires.
func cloneStrings(src []string) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func cloneSet(src keywords.Set) keywords.Set {
	return keywords.Set{Main: cloneStrings(src.Main), Supporting: cloneStrings(src.Supporting)}
}

func cloneTable(src keywords.Table) keywords.Table {
	out := make(keywords.Table, len(src))
	for variant, set := range src {
		out[variant] = cloneSet(set)
	}
	return out
}

func cloneTierTable(src keywords.TierTable) keywords.TierTable {
	out := make(keywords.TierTable, len(src))
	for tier, set := range src {
		out[tier] = cloneSet(set)
	}
	return out
}

func cloneGroupList(src keywords.GroupList) keywords.GroupList {
	out := make(keywords.GroupList, len(src))
	for group, list := range src {
		out[group] = cloneStrings(list)
	}
	return out
}

func help() {
	fmt.Print(`
Usage: keyword-updater <command> [flags]

Commands:
  add-keyword   Add a keyword to a vocabulary section
  validate      Validate a keyword table file against the loader schema
  bump-version  Bump the table file version and refresh lastUpdated
  help          Show this help message

A classifier or watchlist section present in the table file replaces the
whole compiled-in table it names, so add-keyword copies the defaults into
the file the first time it touches a section.

Examples:
  keyword-updater add-keyword -section category -variant Raw -keyword "freeze dried"
  keyword-updater add-keyword -section protein -tier High -keyword "venison" -supporting
  keyword-updater add-keyword -section dirtyDozen -group Corn -keyword "corn gluten meal"
  keyword-updater add-keyword -section brands -keyword "acme pet foods"
  keyword-updater validate -path configs/keyword-tables.json
  keyword-updater bump-version -set 1.1.0

Use 'keyword-updater <command> -h' for more information about a command.
`)
}
