package preview

import (
	"bytes"
	"html/template"
	"strings"

	"portfolioX/internal/site"
)

// 与站点模板相同的上下文（img 的 src 属性），用来得到 html/template
// 对图片路径的实际输出，例如非 ASCII 字符会被百分号编码。
var srcAttrTemplate = template.Must(template.New("src").Parse(`<img src="{{.}}">`))

// Document 把导出的多文件站点拼成可直接 SetDocumentContent 的单页：
// 样式表内联，图片引用替换为原始 data URI，脚本去掉（截图不需要交互）。
func Document(markup, stylesheet string, assets []site.ImageAsset) string {
	pairs := []string{
		`<link rel="stylesheet" href="./` + site.StylesheetPath + `">`, "<style>\n" + stylesheet + "\n</style>",
	}
	seen := map[string]struct{}{}
	for _, asset := range assets {
		ref := "./" + asset.Path
		src := `src="` + strings.TrimSpace(asset.Source) + `"`
		for _, form := range []string{ref, escapedSrc(ref)} {
			if _, dup := seen[form]; dup || form == "" {
				continue
			}
			seen[form] = struct{}{}
			pairs = append(pairs, `src="`+form+`"`, src)
		}
	}
	return stripScripts(strings.NewReplacer(pairs...).Replace(markup))
}

// escapedSrc returns ref as html/template writes it into a src attribute.
func escapedSrc(ref string) string {
	var buf bytes.Buffer
	if err := srcAttrTemplate.Execute(&buf, ref); err != nil {
		return ""
	}
	out := strings.TrimPrefix(buf.String(), `<img src="`)
	return strings.TrimSuffix(out, `">`)
}

func stripScripts(doc string) string {
	var b strings.Builder
	for {
		start := strings.Index(doc, "<script")
		if start < 0 {
			b.WriteString(doc)
			return b.String()
		}
		end := strings.Index(doc[start:], "</script>")
		if end < 0 {
			b.WriteString(doc)
			return b.String()
		}
		b.WriteString(doc[:start])
		doc = doc[start+end+len("</script>"):]
	}
}
