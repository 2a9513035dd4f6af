package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/LoganWeir/muni-predict/internal/gtfs"
)

// LoadBlockAliases resolves GTFS block numbers to the AVL block names used
// in the feed's TRAIN_ASSIGNMENT column. The reference table maps BLOCKNUM
// to BLOCKNAME per schedule sign period (SIGNID). The returned map keys are
// AVL block names; values are the matching GTFS block numbers, so schedule
// lookups can cross back from feed names to GTFS block ids.
func LoadBlockAliases(path, signID string, blockNums []string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open block reference: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read block reference: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("block reference %s has no data rows", path)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"SIGNID", "BLOCKNUM", "BLOCKNAME"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("block reference %s missing column %s", path, required)
		}
	}

	wanted := make(map[string]bool, len(blockNums))
	for _, n := range blockNums {
		wanted[gtfs.NormalizeBlockID(n)] = true
	}

	aliases := make(map[string]string)
	for _, rec := range rows[1:] {
		if strings.TrimSpace(rec[col["SIGNID"]]) != signID {
			continue
		}
		num := gtfs.NormalizeBlockID(rec[col["BLOCKNUM"]])
		if !wanted[num] {
			continue
		}
		name := strings.TrimSpace(rec[col["BLOCKNAME"]])
		if name == "" {
			continue
		}
		aliases[name] = num
	}
	if len(aliases) == 0 {
		return nil, fmt.Errorf("no block names for sign id %s in %s", signID, path)
	}
	return aliases, nil
}

// BlockNames returns the AVL block names of an alias map, sorted for
// deterministic iteration.
func BlockNames(aliases map[string]string) []string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
