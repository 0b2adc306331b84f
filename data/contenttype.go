package data

import (
	"path/filepath"
	"strings"
)

type ContentType string

const (
	ContentTypeMixArchive  ContentType = "application/x-westwood-mix"
	ContentTypeShapeSheet  ContentType = "image/x-westwood-shp"
	ContentTypePalette     ContentType = "application/x-westwood-pal"
	ContentTypeTemplate    ContentType = "image/x-westwood-tmp"
	ContentTypeVoxel       ContentType = "model/x-westwood-vxl"
	ContentTypeVoxelMotion ContentType = "model/x-westwood-hva"
	ContentTypeImagePCX    ContentType = "image/x-pcx"
	ContentTypeImagePNG    ContentType = "image/png"
	ContentTypeImageJPEG   ContentType = "image/jpeg"
	ContentTypeImageBMP    ContentType = "image/bmp"
	ContentTypeImageTIFF   ContentType = "image/tiff"
	ContentTypeTextIni     ContentType = "text/x-ini"
	ContentTypeTextPlain   ContentType = "text/plain"
	ContentTypeJson        ContentType = "application/json"
	ContentTypeStream      ContentType = "application/octet-stream"
)

// ExtensionToMIME maps asset file extensions to MIME types. Theater
// extensions (.tem, .sno, ...) name template tiles.
var ExtensionToMIME = map[string]ContentType{
	".mix":  ContentTypeMixArchive,
	".shp":  ContentTypeShapeSheet,
	".pal":  ContentTypePalette,
	".tmp":  ContentTypeTemplate,
	".tem":  ContentTypeTemplate,
	".sno":  ContentTypeTemplate,
	".urb":  ContentTypeTemplate,
	".des":  ContentTypeTemplate,
	".ubn":  ContentTypeTemplate,
	".lun":  ContentTypeTemplate,
	".vxl":  ContentTypeVoxel,
	".hva":  ContentTypeVoxelMotion,
	".pcx":  ContentTypeImagePCX,
	".png":  ContentTypeImagePNG,
	".jpg":  ContentTypeImageJPEG,
	".jpeg": ContentTypeImageJPEG,
	".bmp":  ContentTypeImageBMP,
	".tif":  ContentTypeImageTIFF,
	".tiff": ContentTypeImageTIFF,
	".ini":  ContentTypeTextIni,
	".txt":  ContentTypeTextPlain,
	".json": ContentTypeJson,
}

// GetMIMEType returns the MIME type for the extension of name
func GetMIMEType(name string) ContentType {
	ext := strings.ToLower(filepath.Ext(name))

	if mimeType, exists := ExtensionToMIME[ext]; exists {
		return mimeType
	}

	return ContentTypeStream
}
