package parse

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Block is one parsed JSON-LD object.
type Block map[string]any

// SchemaData is the page's structured-data view: every JSON-LD object it
// declares, plus the blocks the scorers care about, resolved by type.
type SchemaData struct {
	// Types lists every @type declared across all blocks.
	Types []string
	// Blocks holds every parsed object, @graph arrays flattened.
	Blocks []Block
	// ScriptCount is the number of ld+json script tags seen, including
	// ones whose JSON failed to parse.
	ScriptCount int

	Organization   Block
	LocalBusiness  Block
	FAQPage        Block
	BreadcrumbList Block
	WebSite        Block
}

// Entity returns the block describing the business itself, preferring
// LocalBusiness over Organization. Nil when the page declares neither.
func (d *SchemaData) Entity() Block {
	if d.LocalBusiness != nil {
		return d.LocalBusiness
	}
	return d.Organization
}

// HasType reports whether any block declares the given @type, including
// LocalBusiness subtypes.
func (d *SchemaData) HasType(target string) bool {
	for _, t := range d.Types {
		if t == target || isLocalBusinessSubtype(t) && target == "LocalBusiness" {
			return true
		}
	}
	return false
}

// ExtractSchema parses every application/ld+json script in the page.
// Malformed blocks are skipped, not fatal.
func ExtractSchema(html string) *SchemaData {
	data := &SchemaData{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return data
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		data.ScriptCount++

		var parsed any
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return
		}

		for _, item := range flattenJSONLD(parsed) {
			data.Blocks = append(data.Blocks, item)
			data.Types = append(data.Types, blockTypes(item)...)
		}
	})

	data.Organization = findByType(data.Blocks, "Organization")
	data.LocalBusiness = findByType(data.Blocks, "LocalBusiness")
	data.FAQPage = findByType(data.Blocks, "FAQPage")
	data.BreadcrumbList = findByType(data.Blocks, "BreadcrumbList")
	data.WebSite = findByType(data.Blocks, "WebSite")

	return data
}

// flattenJSONLD expands top-level arrays and @graph containers into a flat
// list of objects.
func flattenJSONLD(parsed any) []Block {
	var items []any

	switch v := parsed.(type) {
	case []any:
		items = v
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			items = graph
		} else {
			items = []any{v}
		}
	default:
		return nil
	}

	blocks := make([]Block, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			blocks = append(blocks, Block(obj))
		}
	}
	return blocks
}

// blockTypes returns the @type values of a block.
func blockTypes(b Block) []string {
	switch t := b["@type"].(type) {
	case string:
		return []string{t}
	case []any:
		var types []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				types = append(types, s)
			}
		}
		return types
	default:
		return nil
	}
}

// findByType returns the first block whose type matches target, treating
// known LocalBusiness subtypes as matches for LocalBusiness.
func findByType(blocks []Block, target string) Block {
	for _, b := range blocks {
		for _, t := range blockTypes(b) {
			if t == target || (target == "LocalBusiness" && isLocalBusinessSubtype(t)) {
				return b
			}
		}
	}
	return nil
}

// localBusinessSubtypes holds the common schema.org types that extend
// LocalBusiness.
var localBusinessSubtypes = map[string]bool{
	"Restaurant":            true,
	"BarOrPub":              true,
	"CafeOrCoffeeShop":      true,
	"FastFoodRestaurant":    true,
	"Bakery":                true,
	"Dentist":               true,
	"Physician":             true,
	"Optician":              true,
	"MedicalClinic":         true,
	"HealthClub":            true,
	"LodgingBusiness":       true,
	"Hotel":                 true,
	"Motel":                 true,
	"AutoRepair":            true,
	"AutoDealer":            true,
	"BeautySalon":           true,
	"HairSalon":             true,
	"DaySpa":                true,
	"RealEstateAgent":       true,
	"InsuranceAgency":       true,
	"LegalService":          true,
	"Attorney":              true,
	"Notary":                true,
	"AccountingService":     true,
	"FinancialService":      true,
	"Store":                 true,
	"ClothingStore":         true,
	"ElectronicsStore":      true,
	"GroceryStore":          true,
	"HardwareStore":         true,
	"HomeGoodsStore":        true,
	"PetStore":              true,
	"SportingGoodsStore":    true,
	"EntertainmentBusiness": true,
	"AmusementPark":         true,
	"MovieTheater":          true,
	"TouristAttraction":     true,
}

func isLocalBusinessSubtype(t string) bool {
	return localBusinessSubtypes[t]
}

// Str returns the string value at key, or "" when absent or not a string.
func (b Block) Str(key string) string {
	if b == nil {
		return ""
	}
	s, _ := b[key].(string)
	return s
}

// Address joins the structured postal address fields into one string.
// Returns "" when the block has no structured address.
func (b Block) Address() string {
	if b == nil {
		return ""
	}
	addr, ok := b["address"].(map[string]any)
	if !ok {
		return ""
	}

	var parts []string
	for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode"} {
		if v, ok := addr[key].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// SameAs returns the sameAs links of a block.
func (b Block) SameAs() []string {
	if b == nil {
		return nil
	}

	switch v := b["sameAs"].(type) {
	case string:
		return []string{v}
	case []any:
		var links []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				links = append(links, s)
			}
		}
		return links
	default:
		return nil
	}
}

// HasOpeningHours reports whether the block declares opening hours in
// either accepted schema.org form.
func (b Block) HasOpeningHours() bool {
	if b == nil {
		return false
	}
	if _, ok := b["openingHours"]; ok {
		return true
	}
	_, ok := b["openingHoursSpecification"]
	return ok
}
