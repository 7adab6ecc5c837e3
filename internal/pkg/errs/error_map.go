/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and console messages.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrFeatureDisabled:      {Code: ErrFeatureDisabled, Message: "This feature is not available.", Status: http.StatusNotImplemented},

	// 2xxx: Message and Feed Business Logic Errors
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is over the %d character limit. Please shorten it."},
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message has no contents."},
	ErrMessageNotFound:       {Code: ErrMessageNotFound, Message: "No message has that id.", Status: http.StatusNotFound},
	ErrFileTypeInvalid:       {Code: ErrFileTypeInvalid, Message: "Unsupported image type."},
	ErrFileSizeTooLarge:      {Code: ErrFileSizeTooLarge, Message: "File is too large."},
	ErrAvatarNotFound:        {Code: ErrAvatarNotFound, Message: "This user has no avatar.", Status: http.StatusNotFound},

	// 3xxx: User, Session, and Security Errors
	ErrInvalidUsername:       {Code: ErrInvalidUsername, Message: "Usernames are 1-20 lowercase letters, digits or underscores."},
	ErrInvalidPassword:       {Code: ErrInvalidPassword, Message: "Invalid password."},
	ErrUserAlreadyExists:     {Code: ErrUserAlreadyExists, Message: "Username already exists."},
	ErrInvalidCredentials:    {Code: ErrInvalidCredentials, Message: "Incorrect username and/or password."},
	ErrUserNotFound:          {Code: ErrUserNotFound, Message: "That username is not registered.", Status: http.StatusNotFound},
	ErrLoginAttemptsExceeded: {Code: ErrLoginAttemptsExceeded, Message: "Too many failed login attempts. You are still a guest."},
	ErrProfileHidden:         {Code: ErrProfileHidden, Message: "Sorry this user's profile is set to private."},
	ErrAlreadyLoggedIn:       {Code: ErrAlreadyLoggedIn, Message: "You are already signed in."},
	ErrUnauthorized:          {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorage:           {Code: ErrStorage, Message: "The message board is unavailable right now. Nothing was changed.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusBadGateway},
}
