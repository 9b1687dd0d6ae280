package langboard

// languageColors maps canonical language names to their 7-char hex colors.
// Languages missing from the table resolve to the neutral default.
var languageColors = map[string]string{
	"1C Enterprise":    "#814CCC",
	"ABAP":             "#E8274B",
	"Apex":             "#1797c0",
	"Assembly":         "#6E4C13",
	"Astro":            "#ff5a03",
	"Batchfile":        "#C1F12E",
	"C":                "#555555",
	"C#":               "#178600",
	"C++":              "#f34b7d",
	"Clojure":          "#db5855",
	"CoffeeScript":     "#244776",
	"Common Lisp":      "#3fb68b",
	"Crystal":          "#000100",
	"CSS":              "#563d7c",
	"Dart":             "#00B4AB",
	"Dockerfile":       "#384d54",
	"Elixir":           "#6e4a7e",
	"Elm":              "#60B5CC",
	"Emacs Lisp":       "#c065db",
	"Erlang":           "#B83998",
	"F#":               "#b845fc",
	"Fortran":          "#4d41b1",
	"Go":               "#00ADD8",
	"Groovy":           "#4298b8",
	"Hack":             "#878787",
	"Haskell":          "#5e5086",
	"HCL":              "#844FBA",
	"HTML":             "#e34c26",
	"Java":             "#b07219",
	"JavaScript":       "#f1e05a",
	"Julia":            "#a270ba",
	"Jupyter Notebook": "#DA5B0B",
	"Kotlin":           "#A97BFF",
	"Lua":              "#000080",
	"Makefile":         "#427819",
	"MATLAB":           "#e16737",
	"Nim":              "#ffc200",
	"Nix":              "#7e7eff",
	"Objective-C":      "#438eff",
	"OCaml":            "#ef7a08",
	"Pascal":           "#E3F171",
	"Perl":             "#0298c3",
	"PHP":              "#4F5D95",
	"PowerShell":       "#012456",
	"PureScript":       "#1D222D",
	"Python":           "#3572A5",
	"R":                "#198CE7",
	"ReScript":         "#ed5051",
	"Ruby":             "#701516",
	"Rust":             "#dea584",
	"Scala":            "#c22d40",
	"Scheme":           "#1e4aec",
	"SCSS":             "#c6538c",
	"Shell":            "#89e051",
	"Smalltalk":        "#596706",
	"Solidity":         "#AA6746",
	"Svelte":           "#ff3e00",
	"Swift":            "#F05138",
	"SystemVerilog":    "#DAE1C2",
	"Tcl":              "#e4cc98",
	"TeX":              "#3D6117",
	"TypeScript":       "#3178c6",
	"V":                "#4f87c4",
	"Verilog":          "#b2b7f8",
	"VHDL":             "#adb2cb",
	"Vim Script":       "#199f4b",
	"Visual Basic .NET": "#945db7",
	"Vue":              "#41b883",
	"Zig":              "#ec915c",
}

// defaultLanguageColor applies to languages not present in the table,
// including the reserved Unknown bucket.
const defaultLanguageColor = "#cccccc"

// LanguageColor returns the display color for a language name.
func LanguageColor(language string) string {
	if color, ok := languageColors[language]; ok {
		return color
	}
	return defaultLanguageColor
}
