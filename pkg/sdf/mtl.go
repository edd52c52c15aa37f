package sdf

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// mtlKeep lists the .mtl directives Gazebo interprets; everything else is
// dropped because it triggers import warnings.
var mtlKeep = map[string]bool{
	"newmtl": true,
	"Kd":     true,
	"map_Kd": true,
}

// CleanMTL copies r to w keeping only material declarations, diffuse colors
// and diffuse texture maps. When remap is non-nil it is given the texture file
// name of every map_Kd line and may return a replacement path; an empty
// result keeps the original.
func CleanMTL(r io.Reader, w io.Writer, remap func(string) string) error {
	sc := bufio.NewScanner(r)
	bw := bufio.NewWriter(w)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
			continue
		}
		fields := strings.Fields(line)
		if !mtlKeep[fields[0]] {
			continue
		}
		if fields[0] == "map_Kd" && remap != nil {
			if file := mapFile(fields[1:]); file != "" {
				if repl := remap(file); repl != "" {
					fields = []string{"map_Kd", repl}
				}
			}
		}
		if _, err := bw.WriteString(strings.Join(fields, " ") + "\n"); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

// mapOptions gives the maximum argument count of each texture map option.
var mapOptions = map[string]int{
	"-blendu": 1, "-blendv": 1, "-bm": 1, "-boost": 1, "-cc": 1,
	"-clamp": 1, "-imfchan": 1, "-texres": 1, "-mm": 2,
	"-o": 3, "-s": 3, "-t": 3,
}

// mapFile skips the options of a texture map statement and returns the file
// name, which may contain spaces.
func mapFile(args []string) string {
	i := 0
	for i < len(args) {
		n, ok := mapOptions[args[i]]
		if !ok {
			break
		}
		i++
		for j := 0; j < n && i < len(args)-1; j++ {
			if _, err := strconv.ParseFloat(args[i], 64); err != nil && args[i] != "on" && args[i] != "off" {
				break
			}
			i++
		}
	}
	return strings.Join(args[i:], " ")
}

// CleanMTLFile rewrites the .mtl file at p in place.
func CleanMTLFile(p string, remap func(string) string) error {
	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := CleanMTL(bytes.NewReader(data), &out, remap); err != nil {
		return err
	}
	return os.WriteFile(p, out.Bytes(), 0644)
}

// TextureKey normalizes a texture reference for lookups: base name only,
// forward slashes, lower case.
func TextureKey(ref string) string {
	return strings.ToLower(path.Base(strings.ReplaceAll(ref, `\`, "/")))
}
