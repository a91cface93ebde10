package automation

import (
	"errors"
	"fmt"

	"github.com/solatis/automata/internal/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

/*
 * Localized error rendering.
 *
 * Messages are keyed by error title. Every template receives the same
 * arguments and picks what it needs by explicit index:
 *
 *   %[1]q  offending property     %[3]s  offending value, quoted if text
 *   %[2]s  expression path        %[4]s  English detail message
 *
 * Configuration titles carry their detail in %[4]s, which stays English:
 * it names properties and kinds, which are identifiers, not prose.
 */

// Languages lists the languages errors can be rendered in; the first is the
// fallback.
var Languages = []language.Tag{language.English, language.German}

var (
	errorCatalog = buildCatalog()
	matcher      = language.NewMatcher(Languages)
	knownTitles  = make(map[string]bool)
)

const (
	keyDefinitionTooLarge = "DefinitionTooLarge"
	keyPayloadTooLarge    = "PayloadTooLarge"
	keyTooManyVariables   = "TooManyVariables"
)

var errorMessages = []struct {
	key string
	en  string
	de  string
}{
	{types.TitleInvalidConfiguration, "Invalid configuration at %[2]s: %[4]s", "Ungültige Konfiguration bei %[2]s: %[4]s"},
	{types.TitleInvalidJSON, "Invalid JSON at %[2]s: %[4]s", "Ungültiges JSON bei %[2]s: %[4]s"},
	{types.TitleUnknownExpression, "Unknown expression at %[2]s: %[4]s", "Unbekannter Ausdruck bei %[2]s: %[4]s"},
	{types.TitleAmbiguousExpression, "Ambiguous expression at %[2]s: %[4]s", "Mehrdeutiger Ausdruck bei %[2]s: %[4]s"},
	{types.TitleMissingProperty, "Missing property at %[2]s: %[4]s", "Fehlende Eigenschaft bei %[2]s: %[4]s"},
	{types.TitleUnexpectedProperty, "Unexpected property at %[2]s: %[4]s", "Unerwartete Eigenschaft bei %[2]s: %[4]s"},
	{types.TitleIncompatibleType, "Incompatible expression at %[2]s: %[4]s", "Inkompatibler Ausdruck bei %[2]s: %[4]s"},
	{types.TitleInvalidOperandCount, "Wrong number of conditions at %[2]s: %[4]s", "Falsche Anzahl von Bedingungen bei %[2]s: %[4]s"},

	{types.TitleInvalidTextFormat, "The value %[3]s of property %[1]q at %[2]s is not valid text.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist kein gültiger Text."},
	{types.TitleInvalidIntegerFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid integer.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist keine gültige Ganzzahl."},
	{types.TitleInvalidDecimalFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid decimal.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist keine gültige Dezimalzahl."},
	{types.TitleInvalidBooleanFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid boolean.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist kein gültiger Wahrheitswert."},
	{types.TitleInvalidDateFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid date.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist kein gültiges Datum."},
	{types.TitleInvalidTimeFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid time.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist keine gültige Uhrzeit."},
	{types.TitleInvalidDateTimeFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid date and time.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist kein gültiger Zeitpunkt."},
	{types.TitleInvalidIntervalFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid period.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist kein gültiger Zeitraum."},
	{types.TitleInvalidListFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid list.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist keine gültige Liste."},
	{types.TitleInvalidObjectFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid object.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist kein gültiges Objekt."},
	{types.TitleInvalidJSONFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid JSON document.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist kein gültiges JSON-Dokument."},
	{types.TitleInvalidPathFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid object path.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist kein gültiger Objektpfad."},
	{types.TitleInvalidPeriodType, "The value %[3]s of property %[1]q at %[2]s is not a valid period type.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist kein gültiger Periodentyp."},
	{types.TitleInvalidIPAddressFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid IP address.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist keine gültige IP-Adresse."},
	{types.TitleInvalidIPRangeFormat, "The value %[3]s of property %[1]q at %[2]s is not a valid IP range in CIDR notation.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s ist kein gültiger IP-Bereich in CIDR-Notation."},
	{types.TitleInvalidSubnetMask, "The value %[3]s of property %[1]q at %[2]s does not have a valid subnet prefix length.", "Der Wert %[3]s der Eigenschaft %[1]q bei %[2]s hat keine gültige Subnetz-Präfixlänge."},

	{types.TitlePathNotFound, "The path %[3]s was not found at %[2]s and no valueIfNotFound was declared.", "Der Pfad %[3]s wurde bei %[2]s nicht gefunden und es ist kein valueIfNotFound angegeben."},
	{types.TitleMissingDependency, "The required service %[3]s is not available at %[2]s.", "Der benötigte Dienst %[3]s ist bei %[2]s nicht verfügbar."},
	{types.TitleResolutionCancelled, "Evaluation was cancelled at %[2]s.", "Die Auswertung wurde bei %[2]s abgebrochen."},
	{types.TitleInternal, "Internal error: %[4]s", "Interner Fehler: %[4]s"},

	{keyDefinitionTooLarge, "The automation definition is too large.", "Die Automatisierungsdefinition ist zu groß."},
	{keyPayloadTooLarge, "The trigger payload is too large.", "Die Nutzdaten des Auslösers sind zu groß."},
	{keyTooManyVariables, "Too many variables are declared.", "Es sind zu viele Variablen deklariert."},
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, m := range errorMessages {
		knownTitles[m.key] = true
		if err := b.SetString(language.English, m.key, m.en); err != nil {
			panic(fmt.Sprintf("automation: catalog entry %s: %v", m.key, err))
		}
		if err := b.SetString(language.German, m.key, m.de); err != nil {
			panic(fmt.Sprintf("automation: catalog entry %s: %v", m.key, err))
		}
	}
	return b
}

// Localize renders err for display to an automation author in the best
// supported match for tag.
func Localize(err error, tag language.Tag) string {
	if err == nil {
		return ""
	}
	_, idx, _ := matcher.Match(tag)
	p := message.NewPrinter(Languages[idx], message.Catalog(errorCatalog))

	switch {
	case errors.Is(err, types.ErrDefinitionTooLarge):
		return p.Sprintf(keyDefinitionTooLarge)
	case errors.Is(err, types.ErrPayloadTooLarge):
		return p.Sprintf(keyPayloadTooLarge)
	case errors.Is(err, types.ErrTooManyVariables):
		return p.Sprintf(keyTooManyVariables)
	}

	e := types.AsError(err)
	title := e.Title
	if !knownTitles[title] {
		title = types.TitleInternal
	}
	path := e.Path
	if path == "" {
		path = "/"
	}
	return p.Sprintf(title, e.Field, path, renderValue(e.Value), e.Message)
}

// ParseLanguage parses a BCP 47 tag such as "de-CH", falling back to English.
func ParseLanguage(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}

func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
