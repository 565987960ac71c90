package scan

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codescope-io/codescope/internal/graph"
)

// smallProjectComponentLimit is the .tsx component count below which
// a heavyweight state library is architectural bloat.
const smallProjectComponentLimit = 20

// frameworkTable maps a framework label to the dependency names that
// imply it. Order is fixed so detection output is deterministic.
var frameworkTable = []struct {
	name     string
	packages []string
}{
	{"FastAPI", []string{"fastapi"}},
	{"Django", []string{"django"}},
	{"Flask", []string{"flask"}},
	{"React", []string{"react", "react-dom"}},
	{"Next.js", []string{"next"}},
	{"Vue", []string{"vue"}},
	{"Tailwind CSS", []string{"tailwindcss"}},
	{"Flutter", []string{"flutter"}},
	{"Gin", []string{"github.com/gin-gonic/gin"}},
	{"Actix", []string{"actix-web"}},
}

// ParseManifests scans the collected sources for dependency manifests
// at the tree root and returns declared packages per ecosystem. A
// malformed manifest is logged and skipped; the rest still parse.
func ParseManifests(sources map[string][]byte) map[string][]string {
	deps := make(map[string][]string)

	add := func(ecosystem string, names []string) {
		if len(names) > 0 {
			deps[ecosystem] = names
		}
	}

	if data, ok := sources["package.json"]; ok {
		names, err := parsePackageJSON(data)
		if err != nil {
			log.Printf("scan: package.json: %v", err)
		}
		add("npm", names)
	}
	if data, ok := sources["requirements.txt"]; ok {
		add("pip", parseRequirements(data))
	}
	if data, ok := sources["pyproject.toml"]; ok {
		add("pip", mergeUnique(deps["pip"], parsePyproject(data)))
	}
	if data, ok := sources["go.mod"]; ok {
		add("go", parseGoMod(data))
	}
	if data, ok := sources["Cargo.toml"]; ok {
		add("cargo", parseCargoToml(data))
	}
	if data, ok := sources["pubspec.yaml"]; ok {
		names, err := parsePubspec(data)
		if err != nil {
			log.Printf("scan: pubspec.yaml: %v", err)
		}
		add("pub", names)
	}
	return deps
}

// DetectArchBloat flags heavyweight state management in small
// frontends: any Redux package declared while the tree holds fewer
// than 20 .tsx components. Trees with no components at all are left
// alone; the library may serve a non-React surface.
func DetectArchBloat(deps map[string][]string, sources map[string][]byte) []graph.Finding {
	hasRedux := false
	for _, name := range deps["npm"] {
		if strings.Contains(strings.ToLower(name), "redux") {
			hasRedux = true
			break
		}
	}
	if !hasRedux {
		return nil
	}

	tsxCount := 0
	for path := range sources {
		if strings.HasSuffix(strings.ToLower(path), ".tsx") {
			tsxCount++
		}
	}
	if tsxCount == 0 || tsxCount >= smallProjectComponentLimit {
		return nil
	}

	return []graph.Finding{{
		Kind:            graph.FindingArchPurity,
		Severity:        graph.SeverityHigh,
		File:            "package.json",
		Message:         fmt.Sprintf("Redux detected in small project (%d components).", tsxCount),
		SuggestedAction: "Consider Zustand or React Context for better velocity.",
		Metadata:        map[string]string{"components": strconv.Itoa(tsxCount)},
	}}
}

// DetectFrameworks matches declared dependencies against the framework
// table. Output order follows the table, not the input.
func DetectFrameworks(deps map[string][]string) []string {
	declared := make(map[string]bool)
	for _, names := range deps {
		for _, name := range names {
			declared[strings.ToLower(name)] = true
		}
	}

	var frameworks []string
	for _, entry := range frameworkTable {
		for _, pkg := range entry.packages {
			if declared[pkg] {
				frameworks = append(frameworks, entry.name)
				break
			}
		}
	}
	return frameworks
}

func parsePackageJSON(data []byte) ([]string, error) {
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(manifest.Dependencies)+len(manifest.DevDependencies))
	for name := range manifest.Dependencies {
		names = append(names, name)
	}
	for name := range manifest.DevDependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func parseRequirements(data []byte) []string {
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		names = append(names, requirementName(line))
	}
	return names
}

// requirementName strips version specifiers and extras from one
// requirement line.
func requirementName(line string) string {
	for _, sep := range []string{"==", ">=", "<=", "~=", "!=", ">", "<", "[", ";", " "} {
		if i := strings.Index(line, sep); i >= 0 {
			line = line[:i]
		}
	}
	return strings.TrimSpace(line)
}

// parsePyproject pulls names out of the [project] dependencies array.
// It is a line scanner, not a TOML parser; quoted requirement strings
// are all it needs to see.
func parsePyproject(data []byte) []string {
	var names []string
	inDeps := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "dependencies"):
			inDeps = strings.Contains(trimmed, "[")
		case inDeps && strings.HasPrefix(trimmed, "]"):
			inDeps = false
		case inDeps:
			entry := strings.Trim(trimmed, `,"'`)
			if entry != "" {
				names = append(names, requirementName(entry))
			}
		}
	}
	return names
}

func parseGoMod(data []byte) []string {
	var names []string
	inBlock := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "require ("):
			inBlock = true
		case inBlock && trimmed == ")":
			inBlock = false
		case inBlock || strings.HasPrefix(trimmed, "require "):
			fields := strings.Fields(strings.TrimPrefix(trimmed, "require "))
			if len(fields) >= 2 && !strings.HasPrefix(fields[0], "//") {
				names = append(names, fields[0])
			}
		}
	}
	return names
}

func parseCargoToml(data []byte) []string {
	var names []string
	inDeps := false
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inDeps = strings.HasPrefix(trimmed, "[dependencies]") ||
				strings.HasPrefix(trimmed, "[dev-dependencies]")
			continue
		}
		if !inDeps || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if name, _, ok := strings.Cut(trimmed, "="); ok {
			names = append(names, strings.Trim(strings.TrimSpace(name), `"`))
		}
	}
	return names
}

func parsePubspec(data []byte) ([]string, error) {
	var manifest struct {
		Dependencies    map[string]yaml.Node `yaml:"dependencies"`
		DevDependencies map[string]yaml.Node `yaml:"dev_dependencies"`
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(manifest.Dependencies)+len(manifest.DevDependencies))
	for name := range manifest.Dependencies {
		names = append(names, name)
	}
	for name := range manifest.DevDependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func mergeUnique(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, name := range existing {
		seen[name] = true
	}
	out := existing
	for _, name := range extra {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
