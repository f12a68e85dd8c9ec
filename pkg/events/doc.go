// Package events provides the in-process event bus Saturn components
// publish on. Delivery is synchronous but isolated: a panicking or
// misbehaving subscriber is caught and logged per dispatch, and can
// never abort the emitting call. Outbound delivery (chat, webhook,
// email) is an external concern layered on top as a subscriber.
package events
