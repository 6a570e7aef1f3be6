//go:build gui

package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	fynetheme "fyne.io/fyne/v2/theme"

	"medscribe/theme"
)

// variantTheme pins the default fyne theme to one variant so the window
// follows the saved preference rather than the desktop setting.
type variantTheme struct {
	variant fyne.ThemeVariant
}

func newVariantTheme(t theme.Theme) *variantTheme {
	if t == theme.Dark {
		return &variantTheme{variant: fynetheme.VariantDark}
	}
	return &variantTheme{variant: fynetheme.VariantLight}
}

func (v *variantTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	if name == fynetheme.ColorNameBackground && v.variant == fynetheme.VariantDark {
		return color.RGBA{18, 18, 18, 255}
	}
	return fynetheme.DefaultTheme().Color(name, v.variant)
}

func (v *variantTheme) Font(style fyne.TextStyle) fyne.Resource {
	return fynetheme.DefaultTheme().Font(style)
}

func (v *variantTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return fynetheme.DefaultTheme().Icon(name)
}

func (v *variantTheme) Size(name fyne.ThemeSizeName) float32 {
	return fynetheme.DefaultTheme().Size(name)
}
