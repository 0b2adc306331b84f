package data_test

import (
	"testing"

	"github.com/mwantia/cncmaps/data"
)

func TestGetMIMEType(t *testing.T) {
	tests := map[string]data.ContentType{
		"RA2MD.MIX":    data.ContentTypeMixArchive,
		"ltank.shp":    data.ContentTypeShapeSheet,
		"unittem.pal":  data.ContentTypePalette,
		"clat01.sno":   data.ContentTypeTemplate,
		"rulesmd.ini":  data.ContentTypeTextIni,
		"LTNK.png":     data.ContentTypeImagePNG,
		"keyboard.bin": data.ContentTypeStream,
		"no-extension": data.ContentTypeStream,
	}

	for name, expected := range tests {
		t.Run(name, func(tst *testing.T) {
			if got := data.GetMIMEType(name); got != expected {
				tst.Errorf("Expected %q, got %q", expected, got)
			}
		})
	}
}
