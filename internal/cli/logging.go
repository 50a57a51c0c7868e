package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/internal/config"
	"fujiscan-api/pkg/confkit"
	"fujiscan-api/pkg/funding"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("TTL (short/medium): %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium),
		sectionLine("Venues config", cfg.Venues),
		sectionLine("Costs config", cfg.Costs),
		sectionLine("Wages config", cfg.Wages),
		registeredLine(funding.RegisteredVenues()),
	}
	lines = append(lines, VenueLines(cfg.VenuesOrDefault())...)
	return lines
}

// VenueLines describes each configured venue, sorted by name.
func VenueLines(vc *funding.Config) []string {
	if vc == nil {
		return nil
	}
	names := make([]string, 0, len(vc.Venues))
	for name := range vc.Venues {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		v := vc.Venues[name]
		state := "enabled"
		if !v.IsEnabled() {
			state = "disabled"
		}
		lines = append(lines, fmt.Sprintf("Venue %s: %s, timeout=%s, revalidate=%s", name, state, v.Timeout, v.Revalidate))
	}
	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func registeredLine(names []string) string {
	if len(names) == 0 {
		return "Venue types: none registered"
	}
	return "Venue types: " + strings.Join(names, ", ")
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: defaults", name)
	}
}
