package instagram

// ControlKind identifies the interactive elements the bot needs to find on a
// profile or dialog. Instagram ships several DOM variants of the same button,
// so each kind maps to an ordered list of XPath locators tried in sequence.
type ControlKind int

const (
	ControlFollow ControlKind = iota
	ControlUnfollow
	ControlUnfollowConfirm
	ControlLoginSubmit
	ControlDialogClose
	ControlFollowersTab
	ControlFollowingTab
	ControlSaveInfoDismiss
	ControlNotNowDismiss
)

// String returns a human-readable name for logging.
func (k ControlKind) String() string {
	switch k {
	case ControlFollow:
		return "follow button"
	case ControlUnfollow:
		return "unfollow button"
	case ControlUnfollowConfirm:
		return "unfollow confirmation"
	case ControlLoginSubmit:
		return "login submit"
	case ControlDialogClose:
		return "dialog close"
	case ControlFollowersTab:
		return "followers tab"
	case ControlFollowingTab:
		return "following tab"
	case ControlSaveInfoDismiss:
		return "save info dismiss"
	case ControlNotNowDismiss:
		return "not now dismiss"
	default:
		return "unknown control"
	}
}

// controlLocators holds the XPath variants for each control kind, most
// specific first. Instagram A/B tests its markup, so older variants stay in
// the list until they stop showing up in the wild.
var controlLocators = map[ControlKind][]string{
	ControlFollow: {
		`//header//*[@type='button'][text()='Follow']`,
		`//header//*[@role='button'][text()='Follow']`,
		`//*[@type='button'][contains(.,'Follow')][not(contains(.,'Following'))][not(contains(.,'Followers'))]`,
	},
	ControlUnfollow: {
		`//header//*[@type='button'][text()='Following']`,
		`//header//*[@role='button'][text()='Following']`,
		`//*[@type='button'][contains(.,'Following')]`,
		`//*[@type='button'][contains(.,'Requested')]`,
	},
	ControlUnfollowConfirm: {
		`//*[@role='dialog']//*[@role='button'][contains(.,'Unfollow')]`,
		`//*[@role='button'][text()='Unfollow']`,
	},
	ControlLoginSubmit: {
		`//button[@type='submit']`,
	},
	ControlDialogClose: {
		`//*[@role='dialog']//*[@aria-label='Close']`,
		`//*[@aria-label='Close']`,
	},
	ControlFollowersTab: {
		`//header//section//ul//li[2]//a`,
		`//header//section//ul//li[2]`,
	},
	ControlFollowingTab: {
		`//header//section//ul//li[3]//a`,
		`//header//section//ul//li[3]`,
	},
	ControlSaveInfoDismiss: {
		`//button[contains(text(), 'Save Info')]`,
		`//div[@role='button'][contains(text(), 'Save Info')]`,
	},
	ControlNotNowDismiss: {
		`//button[contains(text(), 'Not Now')]`,
		`//div[@role='button'][contains(text(), 'Not Now')]`,
	},
}

// Signal identifies a page state the bot reacts to rather than clicks.
type Signal int

const (
	SignalActionBlocked Signal = iota
	SignalTryAgainLater
	SignalPrivateAccount
	SignalNotFound
	SignalEmptyAccount
	SignalLoginForm
)

// String returns a human-readable name for logging.
func (s Signal) String() string {
	switch s {
	case SignalActionBlocked:
		return "action blocked"
	case SignalTryAgainLater:
		return "try again later"
	case SignalPrivateAccount:
		return "private account"
	case SignalNotFound:
		return "page not found"
	case SignalEmptyAccount:
		return "empty account"
	case SignalLoginForm:
		return "login form"
	default:
		return "unknown signal"
	}
}

var signalLocators = map[Signal][]string{
	SignalActionBlocked: {
		`//*[contains(text(), 'Action Blocked')]`,
	},
	SignalTryAgainLater: {
		`//*[contains(text(), 'Try Again Later')]`,
	},
	SignalPrivateAccount: {
		`//*[contains(text(), 'This account is private')]`,
		`//*[contains(text(), 'This Account is Private')]`,
	},
	SignalNotFound: {
		`//*[contains(text(), "Sorry, this page isn't available.")]`,
	},
	SignalEmptyAccount: {
		`//*[contains(text(), 'No Posts Yet')]`,
		`//*[contains(text(), 'No posts yet')]`,
	},
	SignalLoginForm: {
		`//form[@id='loginForm']`,
		`//input[@name='username']`,
	},
}
