package server

import (
	"html/template"
	"net/http"
)

// authCompletePage runs inside the linking popup. It relays the outcome to
// the window that opened the popup and then closes itself. If the opener is
// gone the page stays up so the user still sees the outcome.
var authCompletePage = template.Must(template.New("auth-complete").Parse(`<!DOCTYPE html>
<html>
<head><title>Authentication Complete</title></head>
<body>
<p>{{if .Success}}Authentication complete. You can close this window.{{else}}Authentication failed: {{.Message}}{{end}}</p>
<script>
(function () {
  var payload = {
    type: {{if .Success}}"AUTH_COMPLETE"{{else}}"AUTH_ERROR"{{end}},
    service: {{.Service}},
    error: {{.Message}}
  };
  if (window.opener) {
    window.opener.postMessage(payload, {{.Origin}});
    window.close();
  }
})();
</script>
</body>
</html>
`))

// AuthCompleteHandler serves the popup completion page. It is reached only by
// a redirect from the link callback, so it carries no middleware.
func (s *Server) AuthCompleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		data := struct {
			Success bool
			Service string
			Message string
			Origin  string
		}{
			Success: query.Get("status") == "success",
			Service: query.Get("service"),
			Message: query.Get("message"),
			Origin:  s.config.BaseURL,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := authCompletePage.Execute(w, data); err != nil {
			s.log.Error().Err(err).Msg("[AuthCompleteHandler] failed to render completion page")
		}
	}
}
