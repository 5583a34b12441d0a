package httpapi

import (
	"errors"
	"html/template"
	"net/http"

	"contact-dialer/internal/auth"
	"contact-dialer/internal/directory"
	"contact-dialer/pkg/logger"

	"github.com/gin-gonic/gin"
)

const contactsTemplateName = "contacts.html"

// Templates holds the HTML pages served to the operator.
var Templates = template.Must(template.New(contactsTemplateName).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Contacts</title></head>
<body>
<h1>Your Outlook Contacts</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Contacts}}
<ul>
{{range .Contacts}}  <li>{{.DisplayName}} - {{.PhoneNumber}} <a href="/call?number={{.PhoneNumber}}{{if $.Token}}&access_token={{$.Token}}{{end}}">Call</a></li>
{{end}}</ul>
<p><a href="/play-message{{if .Token}}?access_token={{.Token}}{{end}}">Play message on active call</a></p>
{{else if not .Error}}<p>No contacts with phone numbers found.</p>{{end}}
</body>
</html>
`))

type contactsPage struct {
	Contacts []directory.Contact
	Error    string
	Token    string
}

// ListContacts renders the contact list with per-contact call links.
func (h Handlers) ListContacts(c *gin.Context) {
	log := logger.FromGin(c)
	page := contactsPage{Token: c.GetString(auth.TokenQueryParam)}

	if h.Contacts == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "directory not configured"})
		return
	}

	contacts, err := h.Contacts.FetchContacts(c.Request.Context())
	if err != nil {
		status := http.StatusBadGateway
		var authErr *directory.AuthenticationError
		if errors.As(err, &authErr) {
			page.Error = "Could not authenticate with the directory."
		} else {
			page.Error = "The directory is unavailable."
		}
		log.Error("contacts page failed", "err", err)
		c.HTML(status, contactsTemplateName, page)
		return
	}

	page.Contacts = contacts
	c.HTML(http.StatusOK, contactsTemplateName, page)
}
