package assistant

import (
	"regexp"
	"strings"

	"github.com/hackgods/vitalpoint-assistant/internal/session"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// onboard runs the identity gate. It reports handled=false once the profile is READY, in which case
// the turn continues to the classifier untouched.
func (e *Engine) onboard(p *session.Profile, utterance string) (reply string, handled bool, err error) {
	switch p.Gate() {
	case session.GateAwaitName:
		if !p.NamePrompted {
			p.NamePrompted = true
			return replyGreeting(e.organization), true, nil
		}
		p.Name = strings.TrimSpace(utterance)
		p.EmailPrompted = true
		return replyNameAccepted(p.Name), true, nil

	case session.GateAwaitEmail:
		if !p.EmailPrompted {
			p.EmailPrompted = true
			return replyEmailPrompt, true, nil
		}
		candidate := strings.TrimSpace(utterance)
		if !emailPattern.MatchString(candidate) {
			return replyInvalidEmail, true, ErrValidation
		}
		p.Email = candidate
		return replyProfileCaptured(e.organization, p.Name, p.Email), true, nil

	default:
		return "", false, nil
	}
}
