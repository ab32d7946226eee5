// Package services holds the business logic of the message backend.
//
// Services defined in this package:
// - MessageService: Sends, lists, retrieves and deletes channel messages
package services
