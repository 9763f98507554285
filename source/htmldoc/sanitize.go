package htmldoc

import "github.com/microcosm-cc/bluemonday"

var ariaAttrs = []string{
	"aria-label", "aria-labelledby", "aria-describedby", "aria-description",
	"aria-hidden", "aria-owns", "aria-controls", "aria-flowto",
	"aria-level", "aria-expanded", "aria-selected", "aria-checked",
	"aria-pressed", "aria-current", "aria-live", "aria-atomic",
	"aria-relevant", "aria-busy", "aria-disabled", "aria-readonly",
	"aria-required", "aria-invalid", "aria-errormessage", "aria-valuetext",
	"aria-valuenow", "aria-valuemin", "aria-valuemax", "aria-modal",
	"aria-haspopup", "aria-posinset", "aria-setsize", "aria-multiselectable",
}

var structuralAttrs = []string{
	"role", "tabindex", "hidden", "id", "for", "title", "alt", "type",
	"value", "placeholder", "checked", "disabled", "required", "readonly",
	"name", "lang", "scope", "selected", "multiple", "data-rect",
	"contenteditable", "open", "size", "pattern", "minlength", "maxlength",
	"min", "max", "step",
}

var formElements = []string{
	"main", "nav", "header", "footer", "aside", "section", "article",
	"form", "input", "button", "select", "option", "optgroup", "textarea",
	"label", "fieldset", "legend", "output", "progress", "meter", "dialog",
	"search", "summary", "details", "figure", "figcaption", "menu",
}

// policy keeps everything the tree builder reads and drops active content.
func policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements(formElements...)
	p.AllowAttrs(structuralAttrs...).Globally()
	p.AllowAttrs(ariaAttrs...).Globally()
	p.AllowStyles("display", "visibility", "left", "top", "width", "height", "position").Globally()
	return p
}

var sanitizer = policy()

func sanitize(data []byte) []byte {
	return sanitizer.SanitizeBytes(data)
}
