// Package nginx writes the reverse-proxy include consumed by the nginx
// front end shipped with the kolibri-server package. The rendered blocks
// are a wire contract: route paths, directive names, and socket paths must
// match what the production proxy expects.
package nginx

import (
	"bytes"
	"text/template"

	"github.com/learningequality/kolibri-server-ctl/internal/errors"
	"github.com/learningequality/kolibri-server-ctl/internal/logging"
	"github.com/learningequality/kolibri-server-ctl/internal/system"
)

// primaryTemplateText is the main listener: the favicon served inline, the
// application routes passed to the uwsgi socket, and a 502 fallback to the
// hashi socket so content iframes keep working while the main server is
// restarting.
const primaryTemplateText = `# This file is maintained AUTOMATICALLY and will be overwritten
#
# Do not edit this file. If you are using the kolibri-server package,
# please write custom configurations in /etc/kolibri/nginx.d/

server{
  listen {{.Port}};
  location {{.PathPrefix}}favicon.ico {
    empty_gif;
  }

  location {{.PathPrefix}} {
    include uwsgi_params;
    uwsgi_pass unix://{{.UWSGISocket}};
    proxy_ignore_headers Vary;
    error_page 502 @error502;
  }

  location @error502 {
    include uwsgi_params;
    uwsgi_pass unix://{{.HashiSocket}};
    proxy_ignore_headers Vary;
  }
}
`

// secondaryTemplateText is the zip content listener: a second port whose
// traffic goes straight to the hashi socket.
const secondaryTemplateText = `
server{
  listen {{.Port}};
  location {{.PathPrefix}} {
    include uwsgi_params;
    uwsgi_pass unix://{{.HashiSocket}};
    proxy_ignore_headers Vary;
  }
}
`

var (
	primaryTemplate   = template.Must(template.New("primary").Parse(primaryTemplateText))
	secondaryTemplate = template.Must(template.New("secondary").Parse(secondaryTemplateText))
)

// templateData is the substitution set for both server blocks.
type templateData struct {
	Port        int
	PathPrefix  string
	UWSGISocket string
	HashiSocket string
}

// Writer renders the proxy config file for one deployment.
type Writer struct {
	fs          system.FileSystem
	path        string
	pathPrefix  string
	uwsgiSocket string
	hashiSocket string
}

// Option configures a Writer.
type Option func(*Writer)

// WithSockets overrides the upstream uwsgi socket paths.
func WithSockets(uwsgiSocket, hashiSocket string) Option {
	return func(w *Writer) {
		if uwsgiSocket != "" {
			w.uwsgiSocket = uwsgiSocket
		}
		if hashiSocket != "" {
			w.hashiSocket = hashiSocket
		}
	}
}

// NewWriter creates a Writer targeting the config file at path, mounting
// all routes under pathPrefix.
func NewWriter(fsys system.FileSystem, path, pathPrefix string, opts ...Option) *Writer {
	w := &Writer{
		fs:          fsys,
		path:        path,
		pathPrefix:  pathPrefix,
		uwsgiSocket: "/tmp/kolibri_uwsgi.sock",
		hashiSocket: "/tmp/kolibri_hashi_uwsgi.sock",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the target config file location.
func (w *Writer) Path() string {
	return w.path
}

// WritePrimary truncates the config file and writes the main server block
// listening on port.
func (w *Writer) WritePrimary(port int) error {
	rendered, err := w.render(primaryTemplate, port)
	if err != nil {
		return errors.ProxyConfigError(w.path, err)
	}

	logging.Debug("writing primary proxy config", "path", w.path, "port", port)
	if err := w.fs.WriteFile(w.path, rendered, 0644); err != nil {
		return errors.ProxyConfigError(w.path, err)
	}
	return nil
}

// AppendSecondary appends the zip content server block listening on port.
// The file is created if WritePrimary has not run first.
func (w *Writer) AppendSecondary(port int) error {
	rendered, err := w.render(secondaryTemplate, port)
	if err != nil {
		return errors.ProxyConfigError(w.path, err)
	}

	logging.Debug("appending secondary proxy config", "path", w.path, "port", port)
	if err := w.fs.AppendFile(w.path, rendered, 0644); err != nil {
		return errors.ProxyConfigError(w.path, err)
	}
	return nil
}

func (w *Writer) render(tmpl *template.Template, port int) ([]byte, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, templateData{
		Port:        port,
		PathPrefix:  w.pathPrefix,
		UWSGISocket: w.uwsgiSocket,
		HashiSocket: w.hashiSocket,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
