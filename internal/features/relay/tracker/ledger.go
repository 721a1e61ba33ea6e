package tracker

// Credentials identify a Telegram destination: the bot token and the chat id.
type Credentials struct {
	Token  string
	ChatID string
}

// Ledger keeps the credentials captured for an address.
type Ledger struct {
	grants map[string]Credentials
}

func NewLedger() *Ledger {
	return &Ledger{grants: make(map[string]Credentials)}
}

func (l *Ledger) GetGrant(address string) (Credentials, bool) {
	g, ok := l.grants[address]
	return g, ok
}

func (l *Ledger) SetGrant(address string, grant Credentials) {
	l.grants[address] = grant
}

func (l *Ledger) Len() int {
	return len(l.grants)
}

func (l *Ledger) ResetAll() {
	l.grants = make(map[string]Credentials)
}

func (l *Ledger) ResetOne(address string) {
	delete(l.grants, address)
}
