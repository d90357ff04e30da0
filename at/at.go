// Package at holds the AT-command vocabulary shared by the modem session
// and the vendor handlers, a bufio.SplitFunc tokenizer for modem output,
// and tolerant parsers for the responses GSM devices actually produce.
package at

const (
	// Terminal Control
	CRLF   = "\r\n"
	Prompt = "> "
	CtrlZ  = "\x1a"

	// Response Codes
	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	NoDialtone = "NO DIALTONE"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	CmeError   = "+CME ERROR:"
	CmsError   = "+CMS ERROR:"

	// URCs (Unsolicited Result Codes)
	UrcNewMsg        = "+CMTI:"
	UrcMessageReport = "+CDSI:"
	UrcCall          = "RING"
)

// Commands issued by the base handler.
const (
	CmdAt             = "AT"
	CmdReset          = "ATZ"
	CmdEchoOff        = "ATE0"
	CmdVerboseErrors  = "AT+CMEE=1"
	CmdSimStatus      = "AT+CPIN?"
	CmdNetworkReg     = "AT+CREG?"
	CmdStorageStatus  = "AT+CPMS?"
	CmdSetPduMode     = "AT+CMGF=0"
	CmdSetTextMode    = "AT+CMGF=1"
	CmdIndicationsOn  = "AT+CNMI=1,1,0,0,0"
	CmdIndicationsOff = "AT+CNMI=0,0,0,0,0"
	CmdManufacturer   = "AT+CGMI"
	CmdModel          = "AT+CGMM"
	CmdSerialNo       = "AT+CGSN"
	CmdImsi           = "AT+CIMI"
	CmdSwVersion      = "AT+CGMR"
	CmdMsisdn         = "AT+CNUM"
	CmdBattery        = "AT+CBC"
	CmdSignal         = "AT+CSQ"
	CmdGprsStatus     = "AT+CGATT?"
)

type ResponseType int

const (
	TypeFinal  ResponseType = iota // OK, ERROR
	TypeURC                        // Asynchronous notifications
	TypeData                       // Intermediate command output (+CSQ: ...)
	TypePrompt                     // SMS input prompt
)
