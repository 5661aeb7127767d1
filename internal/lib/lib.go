// Package lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains background job processing (using Redis/Asynq)
// and the email client integration (Resend) used to notify
// users when a todo is completed.
package lib
