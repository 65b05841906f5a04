// File: internal/browser/scripts.go
package browser

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Element scripts take the element as their only argument. Engines that bind
// the element to `this` wrap them with BindThis.

const ScriptVisible = `function(el) {
	if (!el || !el.isConnected) return false;
	if (el.tagName === 'INPUT' && (el.type || '').toLowerCase() === 'hidden') return false;
	const style = window.getComputedStyle(el);
	if (style.display === 'none' || style.visibility === 'hidden' || style.opacity === '0') return false;
	const rect = el.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
}`

const ScriptEnabled = `function(el) {
	return !(el.disabled || el.getAttribute('aria-disabled') === 'true');
}`

const ScriptText = `function(el) {
	return (el.innerText || el.textContent || '').trim();
}`

const ScriptLabelText = `function(el) {
	const parts = [];
	if (el.labels) {
		for (const l of el.labels) parts.push(l.textContent || '');
	}
	const labelledBy = el.getAttribute && el.getAttribute('aria-labelledby');
	if (labelledBy) {
		for (const id of labelledBy.split(/\s+/)) {
			const n = document.getElementById(id);
			if (n) parts.push(n.textContent || '');
		}
	}
	if (parts.length === 0 && el.getAttribute && el.getAttribute('aria-label')) {
		parts.push(el.getAttribute('aria-label'));
	}
	if (parts.length === 0) {
		const box = el.parentElement && el.parentElement.parentElement;
		if (box) {
			const label = box.querySelector('label');
			parts.push(label ? (label.textContent || '') : (box.textContent || ''));
		}
	}
	return parts.join(' ').replace(/\s+/g, ' ').trim();
}`

// ScriptAttribute reports whether the attribute exists and its value.
const ScriptAttribute = `function(el, name) {
	return el.hasAttribute(name) ? { ok: true, value: el.getAttribute(name) } : { ok: false, value: "" };
}`

const ScriptClick = `function(el) { el.click(); return true; }`

// ScriptFill sets a value the way typing would and fires input and change.
const ScriptFill = `function(el, value) {
	el.focus();
	el.value = value;
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

const ScriptFocus = `function(el) { el.focus(); return true; }`

// ScriptLocalStorage returns the page origin and its local storage entries.
const ScriptLocalStorage = `(() => {
	const items = {};
	try {
		for (let i = 0; i < localStorage.length; i++) {
			const k = localStorage.key(i);
			items[k] = localStorage.getItem(k);
		}
	} catch (e) {}
	return { origin: location.origin, localStorage: items };
})()`

// BindThis adapts an element script to engines that call functions with the
// element bound to this.
func BindThis(script string) string {
	return fmt.Sprintf("function(...args) { return (%s)(this, ...args); }", script)
}

// RestoreStorageScript builds an init script that seeds local storage for
// every origin in origins before page scripts run.
func RestoreStorageScript(origins []OriginStorage) (string, error) {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(origins)
	if err != nil {
		return "", fmt.Errorf("failed to encode local storage: %w", err)
	}
	return fmt.Sprintf(`(() => {
	const origins = %s;
	for (const o of origins) {
		if (o.origin !== location.origin) continue;
		try {
			for (const [k, v] of Object.entries(o.localStorage || {})) localStorage.setItem(k, v);
		} catch (e) {}
	}
})();`, data), nil
}
