package sdf

import (
	"fmt"
	"io"
)

// WriteMaterialScript writes an OGRE material script that samples one texture.
func WriteMaterialScript(w io.Writer, model, texture string) error {
	_, err := fmt.Fprintf(w, `material %s
{
  technique
  {
    pass
    {
      texture_unit
      {
        texture %s
      }
    }
  }
}
`, MaterialName(model), texture)
	return err
}
