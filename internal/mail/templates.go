package mail

import "fmt"

// SendActivation mails the activation link to a freshly registered
// account.
func SendActivation(m Mailer, name, address, baseURL, key string) {
	body := fmt.Sprintf(`<html><body>
<h2>Willkommen im Capitol Cinema, %s!</h2>
<p>Bitte aktivieren Sie Ihr Konto über den folgenden Link:</p>
<p><a href="%s/activate/%s">Konto aktivieren</a></p>
<p>Falls Sie sich nicht registriert haben, ignorieren Sie diese E-Mail.</p>
</body></html>`, name, baseURL, key)
	m.Send(name, address, "Capitol Cinema - Aktivierungscode", body)
}

// SendEmailChange mails the two confirmation keys: the old-address key
// to the current email, the new-address key to the requested email.
// Proving control of both mailboxes is what makes the change safe.
func SendEmailChange(m Mailer, name, oldAddress, newAddress string, oldKey, newKey int) {
	oldBody := fmt.Sprintf(`<html><body>
<p>Hallo %s,</p>
<p>für Ihr Konto wurde eine Änderung der E-Mail-Adresse beantragt.
Ihr Bestätigungscode für die <b>bisherige</b> Adresse lautet:</p>
<h2>%05d</h2>
<p>Falls Sie keine Änderung beantragt haben, ändern Sie bitte umgehend Ihr Passwort.</p>
</body></html>`, name, oldKey)
	m.Send(name, oldAddress, "Capitol Cinema - Bestätigung Ihrer bisherigen E-Mail-Adresse", oldBody)

	newBody := fmt.Sprintf(`<html><body>
<p>Hallo %s,</p>
<p>diese Adresse soll als neue E-Mail-Adresse Ihres Kontos hinterlegt werden.
Ihr Bestätigungscode für die <b>neue</b> Adresse lautet:</p>
<h2>%05d</h2>
</body></html>`, name, newKey)
	m.Send(name, newAddress, "Capitol Cinema - Bestätigung Ihrer neuen E-Mail-Adresse", newBody)
}

// SendOrderConfirmation mails a short receipt after an order commits.
func SendOrderConfirmation(m Mailer, name, address string, orderID uint64, seats []string, total float64) {
	body := fmt.Sprintf(`<html><body>
<p>Hallo %s,</p>
<p>vielen Dank für Ihre Bestellung Nr. %d.</p>
<p>Plätze: %s</p>
<p>Gesamtbetrag: %.2f EUR</p>
</body></html>`, name, orderID, joinSeats(seats), total)
	m.Send(name, address, "Capitol Cinema - Ihre Bestellung", body)
}

func joinSeats(seats []string) string {
	out := ""
	for i, s := range seats {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
