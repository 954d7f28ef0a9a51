package email

const (
	subjectQuoteProposalFmt = "Ihr Angebot: %s"
	subjectWelcome          = "Ihr Zugang zum Angebotsportal"
)
