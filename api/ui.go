package api

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/Shugo117/recipon/models"
)

// indexTemplate renders the bookmark list with a save form and category
// filter chips. All mutation goes through the JSON API.
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>レシピぽん</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 0 auto; padding: 1rem; }
form { display: flex; gap: .5rem; margin-bottom: 1rem; }
input[type=url] { flex: 1; padding: .5rem; }
.chips a { display: inline-block; margin: 0 .25rem .5rem 0; padding: .2rem .6rem;
  border: 1px solid #ccc; border-radius: 1rem; text-decoration: none; color: inherit; }
.chips a.active { background: #ffe4b5; }
.card { display: flex; gap: .75rem; align-items: center; padding: .5rem 0;
  border-bottom: 1px solid #eee; }
.card img { width: 72px; height: 72px; object-fit: cover; border-radius: .5rem; }
.card .cat { color: #666; font-size: .85rem; }
</style>
</head>
<body>
<h1>🍳 レシピぽん</h1>
<form id="save-form">
  <input type="url" name="url" placeholder="https://..." required>
  <button type="submit">保存</button>
</form>
<div class="chips">
  <a href="/"{{if eq .Selected ""}} class="active"{{end}}>すべて</a>
  {{range .Categories}}<a href="/?category={{.Key}}"{{if eq $.Selected .Key}} class="active"{{end}}>{{.Emoji}} {{.Key}}</a>
  {{end}}
</div>
{{range .Links}}
<div class="card">
  <img src="/thumb?url={{.URL}}" alt="" loading="lazy" onerror="this.style.display='none'">
  <div>
    <a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a>
    <div class="cat">{{.Category}}</div>
  </div>
</div>
{{else}}
<p>まだ保存されたレシピはありません。</p>
{{end}}
<script>
document.getElementById('save-form').addEventListener('submit', async (e) => {
  e.preventDefault();
  const url = e.target.url.value;
  const res = await fetch('/api/links', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({url: url}),
  });
  if (res.ok) location.reload();
  else alert('保存できませんでした');
});
</script>
</body>
</html>
`))

type indexData struct {
	Links      []*models.RecipeLink
	Categories []models.Category
	Selected   string
}

// handleIndex renders the bookmark list page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	category := r.URL.Query().Get("category")
	if category != "" && !models.IsCategory(category) {
		category = ""
	}

	links, err := s.store.List(category, 200, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := indexData{Links: links, Categories: models.Categories, Selected: category}
	if err := indexTemplate.Execute(w, data); err != nil {
		slog.Warn("failed to render index", "error", err)
	}
}
