/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrFeatureDisabled indicates that the requested feature is not configured on this server.
	ErrFeatureDisabled = 1008
)

// 2xxx: Message and Feed Business Logic Errors
const (
	// ErrMessageContentTooLong indicates that the message body exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrMessageEmpty indicates that nothing was left to post once the markers were removed.
	ErrMessageEmpty = 2202

	// ErrMessageNotFound indicates that no visible message carries the requested id.
	ErrMessageNotFound = 2203

	// ErrFileTypeInvalid indicates that an uploaded avatar is not an accepted image type.
	ErrFileTypeInvalid = 2301

	// ErrFileSizeTooLarge indicates that an uploaded avatar exceeds the size limit.
	ErrFileSizeTooLarge = 2302

	// ErrAvatarNotFound indicates that the user has not uploaded an avatar.
	ErrAvatarNotFound = 2303
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidUsername indicates that the username does not match the allowed pattern.
	ErrInvalidUsername = 3101

	// ErrInvalidPassword indicates that the password length is out of range.
	ErrInvalidPassword = 3102

	// ErrUserAlreadyExists indicates that the username is taken.
	ErrUserAlreadyExists = 3103

	// ErrInvalidCredentials indicates a username/password mismatch.
	ErrInvalidCredentials = 3104

	// ErrUserNotFound indicates that the referenced username is not registered.
	ErrUserNotFound = 3105

	// ErrLoginAttemptsExceeded indicates that every allowed login attempt failed.
	ErrLoginAttemptsExceeded = 3106

	// ErrProfileHidden indicates that the profile is set to private.
	ErrProfileHidden = 3107

	// ErrAlreadyLoggedIn indicates that the session is already authenticated.
	ErrAlreadyLoggedIn = 3108

	// ErrUnauthorized indicates that the operation requires a registered, logged in user.
	ErrUnauthorized = 3401
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorage indicates a failure of the backing store.
	ErrStorage = 5001

	// ErrFileStorageFailed indicates a failure of the avatar object storage.
	ErrFileStorageFailed = 5002
)
