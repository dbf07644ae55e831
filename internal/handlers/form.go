package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/MrPunder/qrstyle/internal/models"
)

type formPage struct {
	Groups []models.FieldGroup
	Config models.StyleConfig
}

var formTemplate = template.Must(template.New("form").Funcs(template.FuncMap{
	"value": func(c models.StyleConfig, field string) string { return c.Value(field) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>QR Code Styler</title>
</head>
<body>
<div class="qr-code-styler">
  <img id="preview" alt="QR preview">
  <form id="options">
  {{- $cfg := .Config }}
  {{- range .Groups }}
    <fieldset class="{{ .Class }}">
      <legend>{{ .Title }}</legend>
      {{- range .Fields }}
      <label for="{{ .Name }}">{{ .Label }}</label>
      {{- if eq .Kind "select" }}
      <select id="{{ .Name }}" name="{{ .Name }}">
        {{- $cur := value $cfg .Name }}
        {{- range .Options }}
        <option value="{{ .Value }}"{{ if eq .Value $cur }} selected{{ end }}>{{ .Label }}</option>
        {{- end }}
      </select>
      {{- else if eq .Kind "file" }}
      <input id="{{ .Name }}" name="image-file" type="file" accept="image/*">
      {{- else if eq .Kind "range" }}
      <input id="{{ .Name }}" name="{{ .Name }}" type="range" min="{{ .Min }}" max="{{ .Max }}" step="{{ .Step }}" value="{{ value $cfg .Name }}">
      {{- else }}
      <input id="{{ .Name }}" name="{{ .Name }}" type="{{ .Kind }}" value="{{ value $cfg .Name }}">
      {{- end }}
      {{- end }}
    </fieldset>
  {{- end }}
  </form>
  <a id="download" href="/sessions/export">Download</a>
  <p id="status" role="alert"></p>
  <form id="api-auth" hidden>
    <label for="api-token">API token</label>
    <input id="api-token" type="password" autocomplete="off">
    <button type="submit">Start</button>
  </form>
</div>
<script>
const preview = document.getElementById("preview");
const statusLine = document.getElementById("status");
const apiAuth = document.getElementById("api-auth");
const show = (msg) => { statusLine.textContent = msg; };
const refresh = () => { preview.src = "/sessions/preview?t=" + Date.now(); };

// send бросает ошибку с текстом из JSON ответа, если статус не 2xx
const send = (url, opts) => fetch(url, opts).then((r) => {
  if (r.ok) { show(""); return r; }
  return r.text().then((text) => {
    let msg = text || r.statusText;
    try { msg = JSON.parse(text).error || msg; } catch (e) {}
    const err = new Error(r.status + ": " + msg.trim());
    err.status = r.status;
    throw err;
  });
});
const fail = (err) => { show(err.message || String(err)); };

const start = (token) => {
  const headers = token ? {Authorization: "Bearer " + token} : {};
  return send("/sessions", {method: "POST", headers}).then(() => {
    apiAuth.hidden = true;
    refresh();
  }).catch((err) => {
    // сервер закрыт токеном API: спрашиваем его у пользователя
    if (err.status === 401) { apiAuth.hidden = false; }
    fail(err);
  });
};
apiAuth.addEventListener("submit", (e) => {
  e.preventDefault();
  start(document.getElementById("api-token").value);
});
start();

document.querySelectorAll("#options input, #options select").forEach((el) => {
  const ev = el.type === "text" ? "input" : "change";
  el.addEventListener(ev, () => {
    if (el.type === "file") {
      if (!el.files.length) { send("/sessions/image", {method: "DELETE"}).then(refresh).catch(fail); return; }
      const body = new FormData();
      body.append("image-file", el.files[0]);
      send("/sessions/image", {method: "POST", body}).then(refresh).catch(fail);
      return;
    }
    const body = new URLSearchParams({value: el.value});
    send("/sessions/fields/" + el.name, {method: "POST", body}).then(refresh).catch(fail);
  });
});

document.getElementById("download").addEventListener("click", (e) => {
  e.preventDefault();
  send("/sessions/export").then((r) => {
    const cd = r.headers.get("Content-Disposition") || "";
    const m = cd.match(/filename="?([^";]+)"?/);
    return r.blob().then((blob) => {
      const a = document.createElement("a");
      a.href = URL.createObjectURL(blob);
      a.download = m ? m[1] : "qr";
      a.click();
      URL.revokeObjectURL(a.href);
    });
  }).catch(fail);
});
</script>
</body>
</html>
`))

// FormHandler отдает страницу с формой настроек
func (h *Handler) FormHandler(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := formTemplate.Execute(&buf, formPage{
		Groups: models.FormLayout(),
		Config: h.defaults,
	})
	if err != nil {
		h.logger.Errorf("Failed to render form: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Errorf("Error writing response %v", err)
	}
}
