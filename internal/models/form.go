package models

// FieldKind тип элемента управления формы
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindColor  FieldKind = "color"
	KindRange  FieldKind = "range"
	KindFile   FieldKind = "file"
	KindSelect FieldKind = "select"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldSpec описывает один элемент управления формы
type FieldSpec struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Options []Option  `json:"options,omitempty"`
	Min     float64   `json:"min,omitempty"`
	Max     float64   `json:"max,omitempty"`
	Step    float64   `json:"step,omitempty"`
}

// FieldGroup группа полей одной категории настроек
type FieldGroup struct {
	Class  string      `json:"class"`
	Title  string      `json:"title"`
	Fields []FieldSpec `json:"fields"`
}

// FormLayout возвращает группы элементов управления в порядке их показа
func FormLayout() []FieldGroup {
	return []FieldGroup{
		{
			Class: "url-options",
			Title: "URL Options",
			Fields: []FieldSpec{
				{Name: FieldURL, Label: "Link to Redirect", Kind: KindText},
			},
		},
		{
			Class: "image-options",
			Title: "Image Options",
			Fields: []FieldSpec{
				{Name: FieldImage, Label: "Image File", Kind: KindFile},
				{Name: FieldImageSize, Label: "Image Size", Kind: KindRange, Min: MinImageSize, Max: MaxImageSize, Step: 0.1},
				{Name: FieldImageMargin, Label: "Image Margin", Kind: KindRange, Min: MinImageMargin, Max: MaxImageMargin, Step: 1},
			},
		},
		{
			Class: "dot-options",
			Title: "Dot Options",
			Fields: []FieldSpec{
				{Name: FieldDotType, Label: "Dot Type", Kind: KindSelect, Options: []Option{
					{Value: string(DotClassy), Label: "Classy"},
					{Value: string(DotDots), Label: "Dots"},
					{Value: string(DotRounded), Label: "Rounded"},
					{Value: string(DotClassyRounded), Label: "Classy Rounded"},
					{Value: string(DotSquare), Label: "Square"},
					{Value: string(DotExtraRounded), Label: "Extra Rounded"},
				}},
				{Name: FieldDotColor, Label: "Dot Color", Kind: KindColor},
			},
		},
		{
			Class: "background-options",
			Title: "Background Options",
			Fields: []FieldSpec{
				{Name: FieldBackgroundColor, Label: "Background Color", Kind: KindColor},
			},
		},
		{
			Class: "corner-square-options",
			Title: "Corner Square Options",
			Fields: []FieldSpec{
				{Name: FieldCornerSquareType, Label: "Corner Square Type", Kind: KindSelect, Options: []Option{
					{Value: string(CornerSquareDot), Label: "Classy"},
					{Value: string(CornerSquareSquare), Label: "Square"},
					{Value: string(CornerSquareExtraRounded), Label: "Extra Rounded"},
				}},
				{Name: FieldCornerSquareColor, Label: "Corner Square Color", Kind: KindColor},
			},
		},
		{
			Class: "corner-dot-options",
			Title: "Corner Dot Options",
			Fields: []FieldSpec{
				{Name: FieldCornerDotType, Label: "Corner Dot Type", Kind: KindSelect, Options: []Option{
					{Value: string(CornerDotDot), Label: "Classy"},
					{Value: string(CornerDotSquare), Label: "Square"},
				}},
				{Name: FieldCornerDotColor, Label: "Corner Dot Color", Kind: KindColor},
			},
		},
		{
			Class: "download-options",
			Title: "Download Options",
			Fields: []FieldSpec{
				{Name: FieldDownloadExtension, Label: "File Download Options", Kind: KindSelect, Options: []Option{
					{Value: string(ExtensionPNG), Label: "PNG"},
					{Value: string(ExtensionJPEG), Label: "JPEG"},
					{Value: string(ExtensionWEBP), Label: "WEBP"},
				}},
			},
		},
	}
}

// Value возвращает текущее значение поля в виде строки для формы
func (s StyleConfig) Value(field string) string {
	switch field {
	case FieldURL:
		return s.Data
	case FieldImage:
		return s.Image
	case FieldImageSize:
		return formatFloat(s.ImageSize)
	case FieldImageMargin:
		return formatFloat(float64(s.ImageMargin))
	case FieldDotType:
		return string(s.DotsType)
	case FieldDotColor:
		return s.DotsColor
	case FieldBackgroundColor:
		return s.BackgroundColor
	case FieldCornerSquareType:
		return string(s.CornersSquareType)
	case FieldCornerSquareColor:
		return s.CornersSquareColor
	case FieldCornerDotType:
		return string(s.CornersDotType)
	case FieldCornerDotColor:
		return s.CornersDotColor
	case FieldDownloadExtension:
		return string(s.Extension)
	}
	return ""
}
