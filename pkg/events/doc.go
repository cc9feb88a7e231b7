/*
Package events provides the typed publish/subscribe registry used to broadcast transition
progress and lifecycle notifications.

Every handler is isolated: an error or panic raised by one subscriber is logged and never
prevents delivery to the remaining subscribers.
*/
package events
