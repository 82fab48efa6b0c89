package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironsheep/object-counter/internal/imaging"
)

// Output file suffixes, inserted between the input's base name and its
// extension.
const (
	ResultSuffix       = "_result"
	MaskCombinedSuffix = "_mask_combined"
	MaskDarkSuffix     = "_mask_dark"
	MaskLightSuffix    = "_mask_light"
)

// OutputPaths names the files written for one input image.
type OutputPaths struct {
	Result       string `json:"result"`
	MaskCombined string `json:"mask_combined"`
	MaskDark     string `json:"mask_dark"`
	MaskLight    string `json:"mask_light"`
}

// OutputsFor derives the output names for input. outputDir replaces the
// input's directory when non-empty. The annotated image keeps the input
// extension; masks are always PNG.
func OutputsFor(input, outputDir string) OutputPaths {
	dir := filepath.Dir(input)
	if outputDir != "" {
		dir = outputDir
	}
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(filepath.Base(input), ext)

	return OutputPaths{
		Result:       filepath.Join(dir, base+ResultSuffix+ext),
		MaskCombined: filepath.Join(dir, base+MaskCombinedSuffix+".png"),
		MaskDark:     filepath.Join(dir, base+MaskDarkSuffix+".png"),
		MaskLight:    filepath.Join(dir, base+MaskLightSuffix+".png"),
	}
}

// IsOutputFile reports whether path looks like a file this package wrote.
func IsOutputFile(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, s := range []string{ResultSuffix, MaskCombinedSuffix, MaskDarkSuffix, MaskLightSuffix} {
		if strings.HasSuffix(base, s) {
			return true
		}
	}
	return false
}

// CollectImages expands args into a sorted list of image files. Directories
// contribute their decodable images (not recursively) except previous
// outputs; files are taken as given.
func CollectImages(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			p := filepath.Join(arg, e.Name())
			if e.IsDir() || !imaging.IsImageFile(p) || IsOutputFile(p) {
				continue
			}
			found = append(found, p)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}
