// Package config provides the configuration of the casesheet tools.
//
// The configuration is organized into logical sections:
//   - Paging: page size, resident page budget, spill location and codec
//   - Logging: zap logger settings
//   - Import: delimited text import defaults
//
// # Environment Variable Substitution
//
//	# casesheet.yaml
//	paging:
//	  page_rows: 2048
//	  max_resident_pages: -1
//	  temp_dir: ${CASESHEET_TMP:-/var/tmp}
//	logging:
//	  level: ${LOG_LEVEL}
//
// References to unset variables become empty strings unless a fallback is
// given with ${VAR:-fallback}.
//
// # Resident Page Budget
//
// MaxResidentPages = -1 sizes the page cache from available system memory:
// MemoryFraction of what the host reports as available, divided by the
// encoded size of one page and clamped to [4, 65536]. The figure is computed
// once, when a datasheet is opened.
package config
