package v4l2

import (
	"strings"
	"testing"
)

// TestPixelFormatConstants tests that all pixel format constants are non-zero
func TestPixelFormatConstants(t *testing.T) {
	formats := []struct {
		name   string
		format FourCCType
	}{
		{"PixelFmtRGB24", PixelFmtRGB24},
		{"PixelFmtGrey", PixelFmtGrey},
		{"PixelFmtYUYV", PixelFmtYUYV},
		{"PixelFmtYYUV", PixelFmtYYUV},
		{"PixelFmtYVYU", PixelFmtYVYU},
		{"PixelFmtUYVY", PixelFmtUYVY},
		{"PixelFmtVYUY", PixelFmtVYUY},
		{"PixelFmtMJPEG", PixelFmtMJPEG},
		{"PixelFmtJPEG", PixelFmtJPEG},
		{"PixelFmtMPEG", PixelFmtMPEG},
		{"PixelFmtH264", PixelFmtH264},
		{"PixelFmtMPEG4", PixelFmtMPEG4},
	}

	for _, tt := range formats {
		t.Run(tt.name, func(t *testing.T) {
			if tt.format == 0 {
				t.Errorf("%s should not be zero", tt.name)
			}
		})
	}
}

// TestPixelFormats_MapComplete tests that PixelFormats map has descriptions
func TestPixelFormats_MapComplete(t *testing.T) {
	// Verify map has entries
	if len(PixelFormats) == 0 {
		t.Error("PixelFormats map should not be empty")
	}

	// Test known formats have descriptions
	tests := []struct {
		format FourCCType
		name   string
	}{
		{PixelFmtRGB24, "RGB24"},
		{PixelFmtGrey, "Grey"},
		{PixelFmtYUYV, "YUYV"},
		{PixelFmtMJPEG, "MJPEG"},
		{PixelFmtH264, "H264"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, exists := PixelFormats[tt.format]
			if !exists {
				t.Errorf("PixelFormats missing entry for %s (0x%08x)", tt.name, tt.format)
			}
			if desc == "" {
				t.Errorf("PixelFormats[%s] description should not be empty", tt.name)
			}
		})
	}
}

// TestIsPixYUVEncoded tests YUV format detection
func TestIsPixYUVEncoded(t *testing.T) {
	tests := []struct {
		name     string
		format   FourCCType
		expected bool
	}{
		{"YUYV is YUV", PixelFmtYUYV, true},
		{"YYUV is YUV", PixelFmtYYUV, true},
		{"YVYU is YUV", PixelFmtYVYU, true},
		{"UYVY is YUV", PixelFmtUYVY, true},
		{"VYUY is YUV", PixelFmtVYUY, true},
		{"RGB24 is not YUV", PixelFmtRGB24, false},
		{"MJPEG is not YUV", PixelFmtMJPEG, false},
		{"H264 is not YUV", PixelFmtH264, false},
		{"Grey is not YUV", PixelFmtGrey, false},
		{"Unknown format is not YUV", FourCCType(0x12345678), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsPixYUVEncoded(tt.format)
			if result != tt.expected {
				t.Errorf("IsPixYUVEncoded(0x%08x) = %v, want %v", tt.format, result, tt.expected)
			}
		})
	}
}

func TestFieldConstants(t *testing.T) {
	fields := []struct {
		name  string
		field FieldType
	}{
		{"FieldAny", FieldAny},
		{"FieldNone", FieldNone},
		{"FieldTop", FieldTop},
		{"FieldBottom", FieldBottom},
		{"FieldInterlaced", FieldInterlaced},
		{"FieldSequentialTopBottom", FieldSequentialTopBottom},
		{"FieldSequentialBottomTop", FieldSequentialBottomTop},
		{"FieldAlternate", FieldAlternate},
		{"FieldInterlacedTopBottom", FieldInterlacedTopBottom},
		{"FieldInterlacedBottomTop", FieldInterlacedBottomTop},
	}

	for _, tt := range fields {
		t.Run(tt.name, func(t *testing.T) {
			_ = tt.field
		})
	}
}

// TestFields_MapComplete tests Fields map
func TestFields_MapComplete(t *testing.T) {
	if len(Fields) == 0 {
		t.Error("Fields map should not be empty")
	}

	for field, desc := range Fields {
		if desc == "" {
			t.Errorf("Fields[%d] description should not be empty", field)
		}
	}
}

// TestPixFormat_String tests the String method
func TestPixFormat_String(t *testing.T) {
	tests := []struct {
		name     string
		format   PixFormat
		contains []string
	}{
		{
			name: "YUYV format",
			format: PixFormat{
				Width:        640,
				Height:       480,
				PixelFormat:  PixelFmtYUYV,
				Field:        FieldNone,
				BytesPerLine: 1280,
				SizeImage:    614400,
			},
			contains: []string{"640", "480", "YUYV", "1280", "614400"},
		},
		{
			name: "MJPEG format",
			format: PixFormat{
				Width:        1920,
				Height:       1080,
				PixelFormat:  PixelFmtMJPEG,
				Field:        FieldNone,
				BytesPerLine: 0,
				SizeImage:    1048576,
			},
			contains: []string{"1920", "1080", "Motion-JPEG", "1048576"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.format.String()

			if result == "" {
				t.Error("String() should not be empty")
			}

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("String() = %q, should contain %q", result, expected)
				}
			}
		})
	}
}

// TestPixFormat_FieldsPresent tests that PixFormat struct has expected fields
func TestPixFormat_FieldsPresent(t *testing.T) {
	format := PixFormat{
		Width:        1920,
		Height:       1080,
		PixelFormat:  PixelFmtYUYV,
		Field:        FieldNone,
		BytesPerLine: 3840,
		SizeImage:    4147200,
		Priv:         0,
		Flags:        0,
	}

	// Verify all fields can be accessed
	if format.Width != 1920 {
		t.Errorf("Width = %d, want 1920", format.Width)
	}
	if format.Height != 1080 {
		t.Errorf("Height = %d, want 1080", format.Height)
	}
	if format.PixelFormat != PixelFmtYUYV {
		t.Errorf("PixelFormat = 0x%08x, want 0x%08x", format.PixelFormat, PixelFmtYUYV)
	}
	if format.Field != FieldNone {
		t.Errorf("Field = %d, want %d", format.Field, FieldNone)
	}
	if format.BytesPerLine != 3840 {
		t.Errorf("BytesPerLine = %d, want 3840", format.BytesPerLine)
	}
	if format.SizeImage != 4147200 {
		t.Errorf("SizeImage = %d, want 4147200", format.SizeImage)
	}
}

// TestPixFormat_CommonResolutions tests common video resolutions
func TestPixFormat_CommonResolutions(t *testing.T) {
	resolutions := []struct {
		name   string
		width  uint32
		height uint32
	}{
		{"QVGA", 320, 240},
		{"VGA", 640, 480},
		{"SVGA", 800, 600},
		{"HD 720p", 1280, 720},
		{"Full HD 1080p", 1920, 1080},
		{"4K UHD", 3840, 2160},
	}

	for _, res := range resolutions {
		t.Run(res.name, func(t *testing.T) {
			format := PixFormat{
				Width:       res.width,
				Height:      res.height,
				PixelFormat: PixelFmtYUYV,
				Field:       FieldNone,
			}

			if format.Width != res.width {
				t.Errorf("Width = %d, want %d", format.Width, res.width)
			}
			if format.Height != res.height {
				t.Errorf("Height = %d, want %d", format.Height, res.height)
			}

			// Verify String() works with different resolutions
			str := format.String()
			if str == "" {
				t.Error("String() should not be empty")
			}
		})
	}
}
